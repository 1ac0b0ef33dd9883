package engine

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"rpg-bot/model"
)

// permissionFlags maps the permission names used in command definitions to
// Discord permission bits.
var permissionFlags = map[string]int64{
	"CreateInstantInvite":     discordgo.PermissionCreateInstantInvite,
	"KickMembers":             discordgo.PermissionKickMembers,
	"BanMembers":              discordgo.PermissionBanMembers,
	"Administrator":           discordgo.PermissionAdministrator,
	"ManageChannels":          discordgo.PermissionManageChannels,
	"ManageGuild":             discordgo.PermissionManageGuild,
	"AddReactions":            discordgo.PermissionAddReactions,
	"ViewAuditLog":            discordgo.PermissionViewAuditLogs,
	"PrioritySpeaker":         discordgo.PermissionVoicePrioritySpeaker,
	"Stream":                  discordgo.PermissionVoiceStreamVideo,
	"ViewChannel":             discordgo.PermissionViewChannel,
	"SendMessages":            discordgo.PermissionSendMessages,
	"SendTTSMessages":         discordgo.PermissionSendTTSMessages,
	"ManageMessages":          discordgo.PermissionManageMessages,
	"EmbedLinks":              discordgo.PermissionEmbedLinks,
	"AttachFiles":             discordgo.PermissionAttachFiles,
	"ReadMessageHistory":      discordgo.PermissionReadMessageHistory,
	"MentionEveryone":         discordgo.PermissionMentionEveryone,
	"UseExternalEmojis":       discordgo.PermissionUseExternalEmojis,
	"ViewGuildInsights":       discordgo.PermissionViewGuildInsights,
	"Connect":                 discordgo.PermissionVoiceConnect,
	"Speak":                   discordgo.PermissionVoiceSpeak,
	"MuteMembers":             discordgo.PermissionVoiceMuteMembers,
	"DeafenMembers":           discordgo.PermissionVoiceDeafenMembers,
	"MoveMembers":             discordgo.PermissionVoiceMoveMembers,
	"UseVAD":                  discordgo.PermissionVoiceUseVAD,
	"ChangeNickname":          discordgo.PermissionChangeNickname,
	"ManageNicknames":         discordgo.PermissionManageNicknames,
	"ManageRoles":             discordgo.PermissionManageRoles,
	"ManageWebhooks":          discordgo.PermissionManageWebhooks,
	"ManageEmojisAndStickers": discordgo.PermissionManageGuildExpressions,
	"ManageGuildExpressions":  discordgo.PermissionManageGuildExpressions,
	"UseApplicationCommands":  discordgo.PermissionUseApplicationCommands,
	"ManageEvents":            discordgo.PermissionManageEvents,
	"ManageThreads":           discordgo.PermissionManageThreads,
	"CreatePublicThreads":     discordgo.PermissionCreatePublicThreads,
	"CreatePrivateThreads":    discordgo.PermissionCreatePrivateThreads,
	"SendMessagesInThreads":   discordgo.PermissionSendMessagesInThreads,
	"ModerateMembers":         discordgo.PermissionModerateMembers,
}

// Evaluator decides whether an action's conditions hold.
type Evaluator struct {
	renderer *Renderer
	platform model.Platform
	log      *zap.Logger
	// draw returns a uniform value in [0,100).
	draw func() float64
}

func NewEvaluator(renderer *Renderer, platform model.Platform, log *zap.Logger) *Evaluator {
	return &Evaluator{
		renderer: renderer,
		platform: platform,
		log:      log,
		draw: func() float64 {
			return rand.Float64() * 100
		},
	}
}

// Evaluate ANDs conditions left to right and stops at the first false one.
// An empty list holds.
func (ev *Evaluator) Evaluate(ctx context.Context, conds []model.Condition, inv *model.Invocation) bool {
	for i := range conds {
		if !ev.evaluate(ctx, &conds[i], inv) {
			return false
		}
	}
	return true
}

func (ev *Evaluator) evaluate(ctx context.Context, c *model.Condition, inv *model.Invocation) bool {
	switch c.Type {
	case model.ConditionComparison:
		return compare(ev.operand(c.Value1, inv), c.Operator, ev.operand(c.Value2, inv))

	case model.ConditionChance:
		var chance float64
		if c.Chance != nil {
			chance = *c.Chance
		}
		return ev.draw() < chance

	case model.ConditionPermission:
		if inv.Member == nil {
			return false
		}
		flag, ok := permissionFlags[c.Permission]
		if !ok {
			ev.log.Warn("unknown permission in condition", zap.String("permission", c.Permission))
			return false
		}
		perms := inv.Member.Permissions
		if perms&discordgo.PermissionAdministrator != 0 {
			return true
		}
		return perms&flag == flag

	case model.ConditionRole:
		if inv.Member == nil || !inv.InGuild() {
			return false
		}
		if c.RoleID != "" {
			return inv.Member.HasRole(c.RoleID)
		}
		if c.RoleName != "" {
			return ev.hasRoleNamed(ctx, inv, c.RoleName)
		}
		return false

	case model.ConditionChannel:
		return c.ChannelID != "" && inv.ChannelID == c.ChannelID

	case model.ConditionUser:
		return c.UserID != "" && inv.User.ID == c.UserID

	default:
		return true
	}
}

// operand renders string operands that contain template tags before the
// numeric coercion.
func (ev *Evaluator) operand(v any, inv *model.Invocation) float64 {
	if s, ok := v.(string); ok && (strings.Contains(s, "{{") || strings.Contains(s, "{%")) {
		return parseNumber(ev.renderer.Render(s, inv))
	}
	return toNumber(v)
}

func (ev *Evaluator) hasRoleNamed(ctx context.Context, inv *model.Invocation, name string) bool {
	roles, err := ev.platform.GuildRoles(ctx, inv.GuildID)
	if err != nil {
		ev.log.Warn("could not list guild roles",
			zap.String("guild", inv.GuildID),
			zap.Error(err))
		return false
	}
	for _, role := range roles {
		if role.Name == name && inv.Member.HasRole(role.ID) {
			return true
		}
	}
	return false
}

// compare follows IEEE-754: every comparison involving NaN is false except
// inequality.
func compare(a float64, op string, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	default:
		return false
	}
}
