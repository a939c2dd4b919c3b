package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-board/internal/interface/http"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
)

// UserModule wires account and session routes under /api/user.
// Public: checkUserId.do, register.do, login.do, logout.do
// Session required: view.do, update.do, delete.do
type UserModule struct {
	Handler    *handlers.UserHandler
	Redis      *redis.Client
	LoginLimit int
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, loginLimit int) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, LoginLimit: loginLimit}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, m.LoginLimit, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	checkLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	g := rg.Group("/user")
	g.POST("/checkUserId.do", checkLimiter, m.Handler.CheckUserID)
	g.POST("/register.do", loginLimiter, m.Handler.Register)
	g.POST("/login.do", loginLimiter, m.Handler.Login)
	g.POST("/logout.do", m.Handler.Logout)

	auth := g.Group("/")
	auth.Use(middleware.RequireIdentity())
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/view.do", m.Handler.View)
		auth.POST("/update.do", m.Handler.Update)
		auth.POST("/delete.do", m.Handler.Delete)
	}
}
