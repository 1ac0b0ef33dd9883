package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"

	"rpg-bot/model"
	"rpg-bot/utils"
)

const (
	colorDefault  = 0x0099ff
	colorCooldown = 0xff6b6b

	// placeholderPrefix marks descriptions the editor generates for
	// commands that only run actions.
	placeholderPrefix = "Comando "
)

var blankLineRe = regexp.MustCompile(`(?m)^\s*[\r\n]`)

func invokerAuthor(inv *model.Invocation) *discordgo.MessageEmbedAuthor {
	return &discordgo.MessageEmbedAuthor{
		Name:    inv.User.DisplayName + " usou o comando",
		IconURL: inv.User.AvatarURL,
	}
}

func defaultTitle(inv *model.Invocation) string {
	return strings.ToUpper(inv.CommandName)
}

// simpleEmbed presents a legacy text command. The text is shown verbatim.
func simpleEmbed(text string, inv *model.Invocation) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       colorDefault,
		Author:      invokerAuthor(inv),
		Title:       defaultTitle(inv),
		Description: text,
	}
}

// baseEmbed renders the command's own presentation. The description may
// call override.withTitle, override.withColor and override.withImage to
// change the embed while rendering.
func (e *Engine) baseEmbed(def *model.CommandDefinition, inv *model.Invocation) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color: utils.ParseColor(def.Color, colorDefault),
		Title: def.Title,
	}
	if embed.Title == "" {
		embed.Title = defaultTitle(inv)
	}

	if def.AuthorName != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    def.AuthorName,
			URL:     def.AuthorURL,
			IconURL: def.AuthorIcon,
		}
	} else {
		embed.Author = invokerAuthor(inv)
	}

	ctx := e.renderer.context(inv)
	ctx["override"] = map[string]any{
		"withTitle": func(v *pongo2.Value) string {
			embed.Title = v.String()
			return ""
		},
		"withColor": func(v *pongo2.Value) string {
			embed.Color = utils.ParseColor(v.String(), embed.Color)
			return ""
		},
		"withImage": func(v *pongo2.Value) string {
			embed.Image = &discordgo.MessageEmbedImage{URL: v.String()}
			return ""
		},
	}

	description, err := e.renderer.execute(def.Description, ctx)
	if err != nil {
		e.log.Warn("description render failed, using raw text",
			zap.String("command", inv.CommandName),
			zap.Error(err))
		embed.Description = def.Description
	} else {
		embed.Description = strings.TrimSpace(blankLineRe.ReplaceAllString(description, ""))
	}

	if def.Gif != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: def.Gif}
	}
	if def.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: def.ThumbnailURL}
	}

	footer := def.FooterText
	if def.Cooldown > 0 {
		cd := fmt.Sprintf("⏱️ Cooldown: %ds", def.Cooldown)
		if footer != "" {
			footer += " | " + cd
		} else {
			footer = cd
		}
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer, IconURL: def.FooterIcon}
	}
	return embed
}

// hasRealDescription reports whether the description is worth showing after
// the actions ran.
func hasRealDescription(def *model.CommandDefinition) bool {
	return strings.TrimSpace(def.Description) != "" && !strings.HasPrefix(def.Description, placeholderPrefix)
}

func cooldownNotice(inv *model.Invocation, seconds int, now time.Time) *model.Message {
	embed := &discordgo.MessageEmbed{
		Color: colorCooldown,
		Title: "⏰ Comando em Cooldown",
		Description: fmt.Sprintf("Você precisa aguardar **%d segundos** antes de usar **/%s** novamente.",
			seconds, inv.CommandName),
		Author: &discordgo.MessageEmbedAuthor{
			Name:    inv.User.DisplayName,
			IconURL: inv.User.AvatarURL,
		},
		Timestamp: now.Format(time.RFC3339),
	}
	return &model.Message{Embeds: []*discordgo.MessageEmbed{embed}, Ephemeral: true}
}
