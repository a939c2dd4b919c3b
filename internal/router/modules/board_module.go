package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-board/internal/interface/http"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
)

// BoardModule wires post and comment routes under /api/board. Reads are
// public; ownership on writes is checked by the board service.
type BoardModule struct {
	Handler *handlers.BoardHandler
	Redis   *redis.Client
}

func NewBoardModule(h *handlers.BoardHandler, rdb *redis.Client) *BoardModule {
	return &BoardModule{Handler: h, Redis: rdb}
}

func (m *BoardModule) Register(rg *gin.RouterGroup) {
	writeLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil)

	g := rg.Group("/board")
	g.GET("/view.do", m.Handler.View)
	g.POST("/view.do", m.Handler.View)

	g.POST("/create.do", writeLimiter, m.Handler.Create)
	g.POST("/update.do", writeLimiter, m.Handler.Update)
	g.POST("/delete.do", writeLimiter, m.Handler.Delete)

	g.POST("/comment/create.do", writeLimiter, m.Handler.CreateComment)
	g.POST("/comment/update.do", writeLimiter, m.Handler.UpdateComment)
	g.POST("/comment/delete.do", writeLimiter, m.Handler.DeleteComment)
}
