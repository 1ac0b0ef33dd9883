package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"rpg-bot/model"
)

// NewInvocation converts a gateway interaction into an engine invocation.
// guildName resolves the guild's display name and may be nil.
func NewInvocation(i *discordgo.InteractionCreate, guildName func(guildID string) string) *model.Invocation {
	inv := &model.Invocation{
		GuildID:    i.GuildID,
		ChannelID:  i.ChannelID,
		ReceivedAt: time.Now(),
	}

	user := i.User
	if i.Member != nil {
		user = i.Member.User
		inv.Member = &model.Member{
			Roles:       i.Member.Roles,
			Permissions: i.Member.Permissions,
		}
	}
	if user != nil {
		inv.User = model.User{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: displayName(user),
			AvatarURL:   user.AvatarURL(""),
		}
	}

	if inv.GuildID != "" && guildName != nil {
		inv.GuildName = guildName(inv.GuildID)
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		inv.Kind = model.InvocationCommand
		inv.CommandName = data.Name
		inv.Options = make(map[string]any, len(data.Options))
		for _, opt := range data.Options {
			inv.Arguments = append(inv.Arguments, opt.Value)
			inv.Options[opt.Name] = opt.Value
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		inv.Kind = model.InvocationComponent
		inv.ComponentID = data.CustomID
		inv.Values = data.Values
		if i.Message != nil {
			inv.MessageID = i.Message.ID
		}
	}
	return inv
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
