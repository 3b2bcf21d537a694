package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"placebot/core/bootstrap"
	coretelegram "placebot/core/telegram"
	"placebot/core/telegram/router"
	"placebot/core/telegram/state"
	"placebot/internal/bot"
	"placebot/internal/distance"
	"placebot/internal/repository"
	"placebot/internal/service"
)

// App owns the wired application: infrastructure plus the bot layer.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	bot      *bot.App
	sessions state.Manager
}

// Bootstrap initializes logging, storage and services, and assembles
// the bot application on top of them.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	repo := repository.NewPlaceRepository(res.DB)
	places := service.NewPlaceService(repo)
	dist := distance.NewClient(cfg.Distance)

	ttl := time.Duration(cfg.Core.Sessions.IdleTTLMinutes) * time.Minute
	sessions := state.NewMemoryManager(ttl)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		bot:      bot.NewApp(places, dist, sessions),
		sessions: sessions,
	}, nil
}

// TelegramRunOptions builds the run options consumed by the runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.bot.Register(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.MessageRoutes(a.bot, reg, router.MessageOptions{
		IdleLocation: a.bot.HandleIdleLocation,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
