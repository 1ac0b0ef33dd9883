package engine

import (
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"rpg-bot/model"
	"rpg-bot/utils"
)

const (
	buttonsPerRow          = 5
	defaultMenuPlaceholder = "Selecione uma opção"
)

var buttonStyles = map[string]discordgo.ButtonStyle{
	model.ButtonPrimary:   discordgo.PrimaryButton,
	model.ButtonSecondary: discordgo.SecondaryButton,
	model.ButtonSuccess:   discordgo.SuccessButton,
	model.ButtonDanger:    discordgo.DangerButton,
	model.ButtonLink:      discordgo.LinkButton,
}

var customEmojiRe = regexp.MustCompile(`^<(a?):([\w~]+):(\d+)>$`)
var emojiIDRe = regexp.MustCompile(`^\d{15,}$`)

// parseEmoji accepts a unicode emoji, a custom emoji mention or a bare id.
func parseEmoji(s string) *discordgo.ComponentEmoji {
	if s == "" {
		return nil
	}
	if m := customEmojiRe.FindStringSubmatch(s); m != nil {
		return &discordgo.ComponentEmoji{Name: m[2], ID: m[3], Animated: m[1] == "a"}
	}
	if emojiIDRe.MatchString(s) {
		return &discordgo.ComponentEmoji{ID: s}
	}
	return &discordgo.ComponentEmoji{Name: s}
}

// buildEmbed renders the template fields of an action embed.
func (d *Dispatcher) buildEmbed(src *model.ActionEmbed, inv *model.Invocation) *discordgo.MessageEmbed {
	if src == nil {
		return nil
	}
	embed := &discordgo.MessageEmbed{}
	if src.Title != "" {
		embed.Title = d.renderer.Render(src.Title, inv)
	}
	if src.Description != "" {
		embed.Description = d.renderer.Render(src.Description, inv)
	}
	if src.Color != "" {
		embed.Color = utils.ParseColor(src.Color, 0)
	}
	if src.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: src.Image}
	}
	if src.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: src.Thumbnail}
	}
	if src.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: d.renderer.Render(src.Footer, inv)}
	}
	return embed
}

// buildComponents turns buttons and the select menu into action rows. The
// owned actions of every interactive component are registered before the
// rows are returned, so a click can never arrive ahead of its entry.
func (d *Dispatcher) buildComponents(action *model.Action) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent

	var row []discordgo.MessageComponent
	for _, b := range action.Buttons {
		row = append(row, d.buildButton(b))
		if len(row) == buttonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}

	if menu := action.SelectMenu; menu != nil {
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{d.buildSelectMenu(menu)},
		})
	}
	return rows
}

func (d *Dispatcher) buildButton(b model.Button) discordgo.Button {
	style, ok := buttonStyles[b.Style]
	if !ok {
		style = discordgo.PrimaryButton
	}
	btn := discordgo.Button{
		Label: b.Label,
		Style: style,
		Emoji: parseEmoji(b.Emoji),
	}

	if style == discordgo.LinkButton && b.URL != "" {
		btn.URL = b.URL
		return btn
	}
	if style == discordgo.LinkButton {
		btn.Style = discordgo.SecondaryButton
	}

	btn.CustomID = b.CustomID
	if btn.CustomID == "" {
		btn.CustomID = "btn_" + uuid.NewString()
	}
	if len(b.Actions) > 0 {
		d.components.Register(btn.CustomID, b.Actions)
	}
	return btn
}

func (d *Dispatcher) buildSelectMenu(menu *model.SelectMenu) discordgo.SelectMenu {
	placeholder := menu.Placeholder
	if placeholder == "" {
		placeholder = defaultMenuPlaceholder
	}
	sm := discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    menu.CustomID,
		Placeholder: placeholder,
	}
	if menu.MinValues > 0 {
		minValues := menu.MinValues
		sm.MinValues = &minValues
	}
	if menu.MaxValues > 0 {
		sm.MaxValues = menu.MaxValues
	}

	for _, o := range menu.Options {
		sm.Options = append(sm.Options, discordgo.SelectMenuOption{
			Label:       o.Label,
			Value:       o.Value,
			Description: o.Description,
			Emoji:       parseEmoji(o.Emoji),
		})
		if len(o.Actions) > 0 {
			d.components.Register(menuEntryID(menu.CustomID, o.Value), o.Actions)
		}
	}
	return sm
}
