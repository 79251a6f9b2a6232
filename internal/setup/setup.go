package setup

import (
	"context"

	"github.com/clubhub-dev/clubhub/internal/auth"
	"github.com/clubhub-dev/clubhub/internal/config"
	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/clubhub-dev/clubhub/internal/handler"
	"github.com/clubhub-dev/clubhub/internal/logger"
	"github.com/clubhub-dev/clubhub/internal/realtime"
	"github.com/clubhub-dev/clubhub/internal/service"
	"github.com/clubhub-dev/clubhub/internal/storage/fs"
	"github.com/clubhub-dev/clubhub/internal/storage/pg"
	"github.com/clubhub-dev/clubhub/internal/utils"
)

// Dependencies holds all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Handler *handler.Handler
	Hub     *realtime.Hub
	Bridge  *realtime.RedisBridge
	Jwt     *auth.Jwt
}

// emitter adapts the hub to the service layer's fire-and-forget publisher.
type emitter struct {
	hub *realtime.Hub
}

func (e emitter) Emit(ev domain.Event) {
	e.hub.Publish(context.Background(), ev)
}

// SetupDependencies initializes everything the API server needs.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := fs.New(cfg.Public.AttachmentDir)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(logger.Log)
	var bridge *realtime.RedisBridge
	if cfg.Public.RedisAddr != "" {
		bridge = realtime.NewRedisBridge(cfg.Public.RedisAddr, hub, logger.Log)
		hub.SetBridge(bridge)
	}

	jwt := auth.New(cfg.JwtKey())

	forum := service.NewForum(storage, &utils.ForumTitleValidator{})
	message := service.NewMessage(
		storage,
		&utils.MessageValidator{MaxTextLen: cfg.Public.MaxMessageLen},
		emitter{hub},
		cfg.Public.MessagesPerPage,
	)

	h := handler.New(forum, message, hub, blobs, cfg)

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Handler: h,
		Hub:     hub,
		Bridge:  bridge,
		Jwt:     jwt,
	}, nil
}
