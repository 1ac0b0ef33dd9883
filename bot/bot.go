package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rpg-bot/commands"
	"rpg-bot/engine"
	"rpg-bot/model"
)

type Bot struct {
	Session            *discordgo.Session
	Store              commands.Store
	Engine             *engine.Engine
	RegisteredCommands []*discordgo.ApplicationCommand

	log       *zap.Logger
	config    atomic.Pointer[model.Config]
	regMu     sync.Mutex
	limiter   *rate.Limiter
	lastNames atomic.Value // []string
	scheduler *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load()
}

func (b *Bot) Logger() *zap.Logger {
	return b.log
}

func New(cfg *model.Config, store commands.Store, log *zap.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("bot token is not set")
	}
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.StateEnabled = true

	if log == nil {
		log = zap.NewNop()
	}
	b := &Bot{
		Session: dg,
		Store:   store,
		log:     log.Named("bot"),
		// Bulk overwrites share one route bucket per application.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 2),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

// Close stops background work, pending engine timers and the gateway.
func (b *Bot) Close() {
	b.log.Info("gracefully shutting down")
	b.scheduler.Stop()
	if b.Engine != nil {
		b.Engine.Close()
	}
	if err := b.Store.Close(); err != nil {
		b.log.Warn("error closing command store", zap.Error(err))
	}
	if err := b.Session.Close(); err != nil {
		b.log.Warn("error closing session", zap.Error(err))
	}
}

// ApplicationID resolves the id commands are registered under.
func (b *Bot) ApplicationID(ctx context.Context) (string, error) {
	if id := b.GetConfig().ClientID; id != "" {
		return id, nil
	}
	if b.Session.State != nil && b.Session.State.User != nil {
		return b.Session.State.User.ID, nil
	}
	u, err := b.Session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("resolve application id: %w", err)
	}
	return u.ID, nil
}

// RefreshCommands registers one slash command per book entry, in every
// configured guild or globally when none is configured.
func (b *Bot) RefreshCommands(ctx context.Context) error {
	b.regMu.Lock()
	defer b.regMu.Unlock()

	book, err := b.Store.Commands(ctx)
	if err != nil {
		return fmt.Errorf("load commands: %w", err)
	}
	cmds, err := commands.GenerateCommands(book)
	if err != nil {
		b.log.Warn("some commands cannot be registered", zap.Error(err))
	}

	appID, err := b.ApplicationID(ctx)
	if err != nil {
		return err
	}

	guilds := b.GetConfig().GuildIDs
	if len(guilds) == 0 {
		guilds = []string{""}
	}

	registered := make([]*discordgo.ApplicationCommand, 0, len(cmds)*len(guilds))
	var errs []error
	for _, guildID := range guilds {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
		scope := guildID
		if scope == "" {
			scope = "global"
		}
		b.log.Info("registering commands",
			zap.String("scope", scope),
			zap.Int("commands", len(cmds)))

		out, err := b.Session.ApplicationCommandBulkOverwrite(appID, guildID, cmds, discordgo.WithContext(ctx))
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot update commands for %s: %w", scope, err))
			continue
		}
		registered = append(registered, out...)
	}

	b.RegisteredCommands = registered
	b.lastNames.Store(book.Names())
	if len(errs) == 0 && guilds[0] == "" {
		b.log.Info("global commands registered, propagation can take up to an hour")
	}
	return errors.Join(errs...)
}

// namesChanged reports whether the book's command names differ from the
// last registration.
func (b *Bot) namesChanged(book model.CommandBook) bool {
	prev, _ := b.lastNames.Load().([]string)
	names := book.Names()
	if len(prev) != len(names) {
		return true
	}
	for i := range names {
		if names[i] != prev[i] {
			return true
		}
	}
	return false
}

// Reload is called when the command source reports a new book. Slash
// commands are re-registered only when names were added or removed.
func (b *Bot) Reload(ctx context.Context, book model.CommandBook) {
	if err := book.Validate(); err != nil {
		b.log.Warn("reloaded command book has invalid entries", zap.Error(err))
	}
	if !b.GetConfig().RegisterOnStart || !b.namesChanged(book) {
		return
	}
	if err := b.RefreshCommands(ctx); err != nil {
		b.log.Error("failed to refresh commands after reload", zap.Error(err))
	}
}

func (b *Bot) Commands(ctx context.Context) (model.CommandBook, error) {
	return b.Store.Commands(ctx)
}

func (b *Bot) Stats() EngineStats {
	if b.Engine == nil {
		return EngineStats{}
	}
	return EngineStats{
		Cooldowns:            b.Engine.Cooldowns().Len(),
		Components:           b.Engine.Components().Len(),
		PendingConfirmations: b.Engine.PendingConfirmations(),
	}
}
