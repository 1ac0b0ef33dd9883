package engine

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"rpg-bot/model"
)

const (
	defaultChannelContent = "Mensagem automática"
	defaultDMContent      = "Mensagem direta"
	timeoutReason         = "Timeout por comando"
)

// Dispatcher runs single actions. Failures of side effects are logged and
// never returned, so one failing action does not stop the list it is in.
type Dispatcher struct {
	renderer   *Renderer
	conditions *Evaluator
	components *ComponentTable
	platform   model.Platform
	log        *zap.Logger

	pick func(n int) int
	now  func() time.Time
}

func NewDispatcher(renderer *Renderer, conditions *Evaluator, components *ComponentTable, platform model.Platform, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		renderer:   renderer,
		conditions: conditions,
		components: components,
		platform:   platform,
		log:        log,
		pick:       rand.IntN,
		now:        time.Now,
	}
}

// ExecuteAll runs actions strictly in order.
func (d *Dispatcher) ExecuteAll(ctx context.Context, actions []model.Action, inv *model.Invocation, reply *ReplyTracker) {
	for i := range actions {
		d.Execute(ctx, &actions[i], inv, reply)
	}
}

func (d *Dispatcher) Execute(ctx context.Context, action *model.Action, inv *model.Invocation, reply *ReplyTracker) {
	if !d.conditions.Evaluate(ctx, action.Conditions, inv) {
		return
	}

	log := d.log.With(
		zap.String("command", inv.CommandName),
		zap.String("action", string(action.Type)),
		zap.String("user", inv.User.ID))

	content := d.renderer.Render(action.Content, inv)
	if action.Type == model.ActionRandomReply && len(action.Messages) > 0 {
		content = d.renderer.Render(action.Messages[d.pick(len(action.Messages))], inv)
	}

	msg := &model.Message{Content: content}
	if embed := d.buildEmbed(action.Embed, inv); embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{embed}
	}
	msg.Components = d.buildComponents(action)

	switch action.Type {
	case model.ActionSendMessage, model.ActionRandomReply:
		if err := reply.Send(ctx, msg); err != nil {
			log.Warn("failed to send message", zap.Error(err))
		}

	case model.ActionSendChannel:
		if action.ChannelID == "" {
			log.Debug("send_channel without channelId, skipping")
			return
		}
		if msg.Content == "" {
			msg.Content = defaultChannelContent
		}
		if err := d.platform.SendChannelMessage(ctx, action.ChannelID, msg); err != nil {
			log.Warn("failed to send channel message",
				zap.String("channel", action.ChannelID),
				zap.Error(err))
		}

	case model.ActionSendDM:
		target := action.UserID
		if target == "" {
			target = inv.User.ID
		}
		if msg.Content == "" {
			msg.Content = defaultDMContent
		}
		if err := d.platform.SendDirectMessage(ctx, target, msg); err != nil {
			log.Warn("failed to send direct message",
				zap.String("target", target),
				zap.Error(err))
		}

	case model.ActionAddRole, model.ActionRemoveRole:
		if action.RoleID == "" || inv.Member == nil || !inv.InGuild() {
			return
		}
		var err error
		if action.Type == model.ActionAddRole {
			err = d.platform.AddMemberRole(ctx, inv.GuildID, inv.User.ID, action.RoleID)
		} else {
			err = d.platform.RemoveMemberRole(ctx, inv.GuildID, inv.User.ID, action.RoleID)
		}
		if err != nil {
			log.Warn("failed to change member role",
				zap.String("role", action.RoleID),
				zap.Error(err))
		}

	case model.ActionTimeoutUser:
		if action.Duration <= 0 || inv.Member == nil || !inv.InGuild() {
			return
		}
		until := d.now().Add(time.Duration(action.Duration) * time.Second)
		if err := d.platform.TimeoutMember(ctx, inv.GuildID, inv.User.ID, until, timeoutReason); err != nil {
			log.Warn("failed to time out member",
				zap.Int("duration", action.Duration),
				zap.Error(err))
		}

	case model.ActionDeleteMessage:
		if inv.MessageID == "" {
			return
		}
		if err := d.platform.DeleteMessage(ctx, inv.ChannelID, inv.MessageID); err != nil {
			log.Warn("failed to delete message",
				zap.String("message", inv.MessageID),
				zap.Error(err))
		}

	default:
		log.Warn("unknown action type")
	}
}
