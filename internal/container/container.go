package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/config"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client

	store    repo.Store
	sessions repo.SessionStore
	blobs    repo.BlobStore

	tokenManager *helpers.SessionTokenManager
	hasher       *helpers.BcryptHasher
	rabbitPub    *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)      { cfg = c }
func GetConfig() *config.Config       { return cfg }
func SetLogger(l *logrus.Logger)      { logger = l }
func GetLogger() *logrus.Logger       { return logger }
func SetRedis(r *redis.Client)        { redisClient = r }
func GetRedis() *redis.Client         { return redisClient }
func SetStore(s repo.Store)           { store = s }
func GetStore() repo.Store            { return store }
func SetSessions(s repo.SessionStore) { sessions = s }
func GetSessions() repo.SessionStore  { return sessions }
func SetBlobs(b repo.BlobStore)       { blobs = b }
func GetBlobs() repo.BlobStore        { return blobs }

func SetTokens(m *helpers.SessionTokenManager) { tokenManager = m }
func GetTokens() *helpers.SessionTokenManager {
	if tokenManager != nil {
		return tokenManager
	}
	return helpers.NewSessionTokenManager(cfg.SessionSecret, cfg.SessionTTL)
}

func SetHasher(h *helpers.BcryptHasher) { hasher = h }
func GetHasher() *helpers.BcryptHasher {
	if hasher != nil {
		return hasher
	}
	return helpers.NewBcryptHasher(0)
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
