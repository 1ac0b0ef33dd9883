package model

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrNotTextChannel is returned when a channel send targets a channel that
// cannot hold guild text messages.
var ErrNotTextChannel = errors.New("channel is not a guild text channel")

// Message is an outgoing chat message. Ephemeral is honored only for
// interaction replies.
type Message struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// Responder answers one interaction. Implementations wrap the platform's
// interaction endpoints; they do not track reply state.
type Responder interface {
	Reply(ctx context.Context, msg *Message) error
	Defer(ctx context.Context) error
	FollowUp(ctx context.Context, msg *Message) error
	EditReply(ctx context.Context, msg *Message) error
	// Update replaces the message a component belongs to.
	Update(ctx context.Context, msg *Message) error
}

// Platform performs side effects outside the interaction reply.
type Platform interface {
	SendChannelMessage(ctx context.Context, channelID string, msg *Message) error
	SendDirectMessage(ctx context.Context, userID string, msg *Message) error
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error
	TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
}

// CommandStore provides the current command book.
type CommandStore interface {
	Commands(ctx context.Context) (CommandBook, error)
}
