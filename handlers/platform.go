package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"rpg-bot/model"
)

// Platform performs engine side effects over a discordgo session.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

func messageSend(msg *model.Message) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
	}
}

func (p *Platform) SendChannelMessage(ctx context.Context, channelID string, msg *model.Message) error {
	ch, err := p.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	if ch.Type != discordgo.ChannelTypeGuildText {
		return fmt.Errorf("%w: %s", model.ErrNotTextChannel, channelID)
	}
	_, err = p.s.ChannelMessageSendComplex(channelID, messageSend(msg), discordgo.WithContext(ctx))
	return err
}

func (p *Platform) SendDirectMessage(ctx context.Context, userID string, msg *model.Message) error {
	channel, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create private channel with user %s: %w", userID, err)
	}
	_, err = p.s.ChannelMessageSendComplex(channel.ID, messageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send private message to user %s: %w", userID, err)
	}
	return nil
}

func (p *Platform) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *Platform) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *Platform) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return p.s.GuildMemberTimeout(guildID, userID, &until,
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason))
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return p.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *Platform) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	return p.s.GuildRoles(guildID, discordgo.WithContext(ctx))
}
