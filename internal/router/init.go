package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/config"
	"github.com/oksasatya/go-ddd-board/internal/application"
	"github.com/oksasatya/go-ddd-board/internal/container"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
	handlers "github.com/oksasatya/go-ddd-board/internal/interface/http"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-board/internal/router/modules"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
)

// Deps is everything the HTTP modules are built from. Redis and Jobs are
// optional: without Redis there is no rate limiting, without Jobs no email.
type Deps struct {
	Cfg      *config.Config
	Logger   *logrus.Logger
	Store    repo.Store
	Sessions repo.SessionStore
	Blobs    repo.BlobStore
	Hasher   application.PasswordHasher
	Tokens   *helpers.SessionTokenManager
	Redis    *redis.Client
	Jobs     application.JobPublisher
}

// DepsFromContainer collects the singletons set up by main.
func DepsFromContainer() Deps {
	d := Deps{
		Cfg:      container.GetConfig(),
		Logger:   container.GetLogger(),
		Store:    container.GetStore(),
		Sessions: container.GetSessions(),
		Blobs:    container.GetBlobs(),
		Hasher:   container.GetHasher(),
		Tokens:   container.GetTokens(),
		Redis:    container.GetRedis(),
	}
	if pub := container.GetRabbitPub(); pub != nil {
		d.Jobs = pub
	}
	return d
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, d Deps) {
	cfg := d.Cfg

	auth := application.NewAuthService(d.Store.Users(), d.Sessions, d.Hasher, cfg.SessionTTL, d.Logger)
	users := application.NewUserService(d.Store.Users(), d.Hasher, auth, d.Jobs, cfg.AppName, d.Logger)
	files := application.NewFileService(d.Store, d.Blobs, cfg.APIBaseURL, d.Logger)
	boards := application.NewBoardService(d.Store, files, d.Jobs, d.Logger)

	cookies := helpers.NewCookie(cfg.SessionCookieName, cfg.CookieDomain, cfg.CookieSecure)

	r.Use(middleware.Session(d.Tokens, cfg.SessionCookieName, auth, d.Logger))

	r.Add(modules.NewUserModule(handlers.NewUserHandler(users, auth, d.Tokens, d.Logger, cookies), d.Redis, cfg.LoginRateLimit))
	r.Add(modules.NewBoardModule(handlers.NewBoardHandler(boards, d.Logger, cfg.MaxUploadBytes), d.Redis))
	r.Add(modules.NewFileModule(handlers.NewFileHandler(files, d.Logger, cfg.MaxUploadBytes), d.Redis))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
