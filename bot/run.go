package bot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rpg-bot/commands"
	"rpg-bot/model"
	"rpg-bot/status"
)

// Run opens the gateway and blocks until ctx is cancelled or a component
// fails. The engine must be attached before calling Run.
func (b *Bot) Run(ctx context.Context) error {
	if b.Engine == nil {
		return errors.New("engine is not attached")
	}
	cfg := b.GetConfig()

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	b.log.Info("bot is now running", zap.String("commands_source", cfg.CommandSource()))

	if cfg.RegisterOnStart {
		if err := b.RefreshCommands(ctx); err != nil {
			b.log.Error("command registration failed", zap.Error(err))
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if fs, ok := b.Store.(*commands.FileStore); ok {
		err := fs.Watch(func(book model.CommandBook) {
			b.Reload(ctx, book)
		})
		if err != nil {
			b.log.Warn("command file hot reload disabled", zap.String("path", fs.Path()), zap.Error(err))
		} else {
			b.log.Info("watching command file", zap.String("path", fs.Path()))
		}
		b.scheduler.Start(ctx, false)
	} else {
		b.scheduler.Start(ctx, true)
	}

	if cfg.StatusAddr != "" {
		srv := status.New(cfg.StatusAddr, cfg.StatusCORSOrigins, b.Engine, b.Session, b.log)
		g.Go(func() error {
			return srv.ListenAndServe(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	return g.Wait()
}
