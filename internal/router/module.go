package router

import "github.com/gin-gonic/gin"

// Module is one feature area (user, board, file, debug). Register mounts
// its routes under /api; per-route middleware such as rate limits is the
// module's business.
type Module interface {
	Register(rg *gin.RouterGroup)
}
