package handlers

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"rpg-bot/bot"
	"rpg-bot/engine"
)

const defaultEventTimeout = 30 * time.Second

// guildLookupTimeout caps the REST fallback for guild names. It runs before
// the interaction is acknowledged and must leave room in the 3s window.
var guildLookupTimeout = time.Second

// Register builds the engine over the bot's session and routes gateway
// events into it.
func Register(b *bot.Bot) {
	log := b.Logger().Named("handlers")
	platform := NewPlatform(b.Session)
	b.Engine = engine.New(b.Store, platform, b.Logger())
	addHandlers(b, log)
}

func addHandlers(b *bot.Bot, log *zap.Logger) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("logged in",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b, log)
	})
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, log *zap.Logger) {
	if i.Type != discordgo.InteractionApplicationCommand && i.Type != discordgo.InteractionMessageComponent {
		return
	}

	timeout := b.GetConfig().EventTimeout
	if timeout <= 0 {
		timeout = defaultEventTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	inv := NewInvocation(i, guildNameResolver(ctx, s, log))
	b.Engine.Handle(ctx, inv, NewResponder(s, i.Interaction))
}

// guildNameResolver prefers the state cache and falls back to the API.
func guildNameResolver(ctx context.Context, s *discordgo.Session, log *zap.Logger) func(string) string {
	return func(guildID string) string {
		if s.State != nil {
			if g, err := s.State.Guild(guildID); err == nil && g.Name != "" {
				return g.Name
			}
		}
		lookupCtx, cancel := context.WithTimeout(ctx, guildLookupTimeout)
		defer cancel()
		g, err := s.Guild(guildID, discordgo.WithContext(lookupCtx))
		if err != nil {
			log.Debug("could not resolve guild name", zap.String("guild", guildID), zap.Error(err))
			return ""
		}
		return g.Name
	}
}
