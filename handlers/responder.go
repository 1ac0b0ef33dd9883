package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"rpg-bot/model"
)

// Responder answers one interaction through the session's interaction
// endpoints.
type Responder struct {
	s *discordgo.Session
	i *discordgo.Interaction
}

func NewResponder(s *discordgo.Session, i *discordgo.Interaction) *Responder {
	return &Responder{s: s, i: i}
}

func messageFlags(msg *model.Message) discordgo.MessageFlags {
	if msg.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func responseData(msg *model.Message) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
		Flags:      messageFlags(msg),
	}
}

func webhookParams(msg *model.Message) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
		Flags:      messageFlags(msg),
	}
}

// webhookEdit replaces content always; embeds and components are replaced
// only when set, so a nil slice leaves them untouched and an empty one
// clears them.
func webhookEdit(msg *model.Message) *discordgo.WebhookEdit {
	content := msg.Content
	edit := &discordgo.WebhookEdit{Content: &content}
	if msg.Embeds != nil {
		embeds := msg.Embeds
		edit.Embeds = &embeds
	}
	if msg.Components != nil {
		components := msg.Components
		edit.Components = &components
	}
	return edit
}

func (r *Responder) Reply(ctx context.Context, msg *model.Message) error {
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: responseData(msg),
	}, discordgo.WithContext(ctx))
}

func (r *Responder) Defer(ctx context.Context) error {
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}

func (r *Responder) FollowUp(ctx context.Context, msg *model.Message) error {
	_, err := r.s.FollowupMessageCreate(r.i, true, webhookParams(msg), discordgo.WithContext(ctx))
	return err
}

func (r *Responder) EditReply(ctx context.Context, msg *model.Message) error {
	_, err := r.s.InteractionResponseEdit(r.i, webhookEdit(msg), discordgo.WithContext(ctx))
	return err
}

func (r *Responder) Update(ctx context.Context, msg *model.Message) error {
	data := responseData(msg)
	data.Flags = 0
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, discordgo.WithContext(ctx))
}
