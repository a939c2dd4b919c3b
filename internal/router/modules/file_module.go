package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-board/internal/interface/http"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
)

type FileModule struct {
	Handler *handlers.FileHandler
	Redis   *redis.Client
}

func NewFileModule(h *handlers.FileHandler, rdb *redis.Client) *FileModule {
	return &FileModule{Handler: h, Redis: rdb}
}

func (m *FileModule) Register(rg *gin.RouterGroup) {
	uploadLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByUserID(), nil)

	g := rg.Group("/file")
	g.GET("/down.do", m.Handler.Download)
	g.GET("/imgDown.do", m.Handler.ImageDownload)
	g.POST("/imgUpload.do", uploadLimiter, m.Handler.ImageUpload)
}
