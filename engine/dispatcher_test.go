package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rpg-bot/model"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakePlatform, *ComponentTable) {
	t.Helper()
	log := zaptest.NewLogger(t)
	platform := &fakePlatform{}
	renderer := NewRenderer(log)
	components := NewComponentTable()
	d := NewDispatcher(renderer, NewEvaluator(renderer, platform, log), components, platform, log)
	d.now = newFakeClock().Now
	return d, platform, components
}

func TestExecuteSendMessageRepliesThenFollowsUp(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	resp := &fakeResponder{}
	rt := NewReplyTracker(resp)
	inv := commandInvocation("x")

	d.ExecuteAll(context.Background(), []model.Action{
		{Type: model.ActionSendMessage, Content: "primeiro {{ user.mention }}"},
		{Type: model.ActionSendMessage, Content: "segundo"},
	}, inv, rt)

	assert.Equal(t, []string{"reply", "followup"}, resp.kinds())
	assert.Equal(t, "primeiro <@u1>", resp.find("reply")[0].Content)
	assert.Equal(t, "segundo", resp.find("followup")[0].Content)
}

func TestExecuteSkipsWhenConditionsFail(t *testing.T) {
	d, platform, _ := newTestDispatcher(t)
	resp := &fakeResponder{}
	rt := NewReplyTracker(resp)

	d.Execute(context.Background(), &model.Action{
		Type:       model.ActionSendDM,
		Conditions: []model.Condition{{Type: model.ConditionUser, UserID: "outro"}},
	}, commandInvocation("x"), rt)

	assert.Empty(t, resp.kinds())
	assert.Empty(t, platform.ops())
}

func TestExecuteRandomReplyPicksOneMessage(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	inv := commandInvocation("x")
	action := &model.Action{Type: model.ActionRandomReply, Messages: []string{"A", "B"}}

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		resp := &fakeResponder{}
		d.Execute(context.Background(), action, inv, NewReplyTracker(resp))
		msgs := resp.find("reply")
		require.Len(t, msgs, 1)
		seen[msgs[0].Content]++
	}
	assert.Len(t, seen, 2)
	assert.Positive(t, seen["A"])
	assert.Positive(t, seen["B"])
}

func TestExecuteRandomReplyRendersChoice(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	d.pick = func(int) int { return 1 }
	resp := &fakeResponder{}

	d.Execute(context.Background(), &model.Action{
		Type:     model.ActionRandomReply,
		Messages: []string{"A", "B para {{ user.name }}"},
	}, commandInvocation("x"), NewReplyTracker(resp))

	assert.Equal(t, "B para usuario", resp.last().Msg.Content)
}

func TestExecuteChannelAndDM(t *testing.T) {
	d, platform, _ := newTestDispatcher(t)
	rt := NewReplyTracker(&fakeResponder{})
	inv := commandInvocation("x")

	d.ExecuteAll(context.Background(), []model.Action{
		{Type: model.ActionSendChannel, ChannelID: "c9"},
		{Type: model.ActionSendChannel},
		{Type: model.ActionSendDM},
		{Type: model.ActionSendDM, UserID: "u7", Content: "oi {{ user.displayName }}"},
	}, inv, rt)

	channel := platform.byOp("channel")
	require.Len(t, channel, 1)
	assert.Equal(t, "c9", channel[0].Target)
	assert.Equal(t, defaultChannelContent, channel[0].Msg.Content)

	dms := platform.byOp("dm")
	require.Len(t, dms, 2)
	assert.Equal(t, "u1", dms[0].Target)
	assert.Equal(t, defaultDMContent, dms[0].Msg.Content)
	assert.Equal(t, "u7", dms[1].Target)
	assert.Equal(t, "oi Usuario", dms[1].Msg.Content)
}

func TestExecuteSideEffectFailuresDoNotStopTheList(t *testing.T) {
	d, platform, _ := newTestDispatcher(t)
	platform.sendErr = errBoom
	resp := &fakeResponder{}

	d.ExecuteAll(context.Background(), []model.Action{
		{Type: model.ActionSendChannel, ChannelID: "c9"},
		{Type: model.ActionSendDM},
		{Type: model.ActionSendMessage, Content: "ainda aqui"},
	}, commandInvocation("x"), NewReplyTracker(resp))

	assert.Equal(t, []string{"channel", "dm"}, platform.ops())
	assert.Equal(t, "ainda aqui", resp.last().Msg.Content)
}

func TestExecuteRolesTimeoutAndDelete(t *testing.T) {
	d, platform, _ := newTestDispatcher(t)
	rt := NewReplyTracker(&fakeResponder{})
	inv := componentInvocation("btn")

	d.ExecuteAll(context.Background(), []model.Action{
		{Type: model.ActionAddRole, RoleID: "r5"},
		{Type: model.ActionRemoveRole, RoleID: "r1"},
		{Type: model.ActionAddRole},
		{Type: model.ActionTimeoutUser, Duration: 60},
		{Type: model.ActionTimeoutUser},
		{Type: model.ActionDeleteMessage},
	}, inv, rt)

	assert.Equal(t, []string{"add_role", "remove_role", "timeout", "delete"}, platform.ops())
	timeout := platform.byOp("timeout")[0]
	assert.Equal(t, "u1", timeout.Target)
	assert.Equal(t, timeoutReason, timeout.Arg)
	assert.Equal(t, newFakeClock().Now().Add(60*time.Second), timeout.Until)
	assert.Equal(t, "m1", platform.byOp("delete")[0].Arg)
}

func TestExecuteMemberActionsNeedGuild(t *testing.T) {
	d, platform, _ := newTestDispatcher(t)
	inv := commandInvocation("x")
	inv.GuildID, inv.GuildName, inv.Member = "", "", nil

	d.ExecuteAll(context.Background(), []model.Action{
		{Type: model.ActionAddRole, RoleID: "r5"},
		{Type: model.ActionTimeoutUser, Duration: 60},
		{Type: model.ActionDeleteMessage},
	}, inv, NewReplyTracker(&fakeResponder{}))

	assert.Empty(t, platform.ops())
}

func TestExecuteBuildsEmbed(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	resp := &fakeResponder{}

	d.Execute(context.Background(), &model.Action{
		Type: model.ActionSendMessage,
		Embed: &model.ActionEmbed{
			Title:       "Golpe de {{ user.displayName }}",
			Description: "Dano: {{ random(3, 3) }}",
			Color:       "#FF0000",
			Image:       "https://img.example/a.gif",
			Thumbnail:   "https://img.example/t.png",
			Footer:      "{{ server.name }}",
		},
	}, commandInvocation("x"), NewReplyTracker(resp))

	msg := resp.last().Msg
	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, "Golpe de Usuario", embed.Title)
	assert.Equal(t, "Dano: 3", embed.Description)
	assert.Equal(t, 0xff0000, embed.Color)
	assert.Equal(t, "https://img.example/a.gif", embed.Image.URL)
	assert.Equal(t, "https://img.example/t.png", embed.Thumbnail.URL)
	assert.Equal(t, "Taverna", embed.Footer.Text)
}

func TestExecuteRegistersButtonsBeforeSending(t *testing.T) {
	d, _, components := newTestDispatcher(t)
	resp := &registrationCheckingResponder{fakeResponder: &fakeResponder{}, components: components}

	nested := []model.Action{{Type: model.ActionSendMessage, Content: "Clicked"}}
	d.Execute(context.Background(), &model.Action{
		Type:    model.ActionSendMessage,
		Content: "escolha",
		Buttons: []model.Button{
			{Label: "Go", Style: "Primary", Actions: nested},
			{Label: "Fixo", Style: "Danger", CustomID: "fixo", Actions: nested},
			{Label: "Site", Style: "Link", URL: "https://example.com"},
			{Label: "Sem ações", Style: "Secondary"},
		},
	}, commandInvocation("x"), NewReplyTracker(resp))

	require.True(t, resp.checked)
	assert.True(t, resp.allRegistered, "components must be registered before the message is sent")

	ids := customIDs(resp.last().Msg.Components)
	require.Len(t, ids, 3)
	assert.True(t, strings.HasPrefix(ids[0], "btn_"))
	assert.Equal(t, "fixo", ids[1])
	assert.True(t, strings.HasPrefix(ids[2], "btn_"))

	_, ok := components.Lookup(ids[0])
	assert.True(t, ok)
	_, ok = components.Lookup(ids[2])
	assert.False(t, ok, "buttons without actions are not registered")
}

type registrationCheckingResponder struct {
	*fakeResponder
	components    *ComponentTable
	checked       bool
	allRegistered bool
}

func (r *registrationCheckingResponder) Reply(ctx context.Context, msg *model.Message) error {
	r.checked = true
	ids := customIDs(msg.Components)
	r.allRegistered = len(ids) >= 2
	for _, id := range ids[:min(2, len(ids))] {
		if _, ok := r.components.Lookup(id); !ok {
			r.allRegistered = false
		}
	}
	return r.fakeResponder.Reply(ctx, msg)
}

func TestExecuteButtonRows(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	resp := &fakeResponder{}

	var buttons []model.Button
	for i := 0; i < 7; i++ {
		buttons = append(buttons, model.Button{Label: "b", Style: "Primary"})
	}
	d.Execute(context.Background(), &model.Action{Type: model.ActionSendMessage, Content: "x", Buttons: buttons},
		commandInvocation("x"), NewReplyTracker(resp))

	rows := resp.last().Msg.Components
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].(discordgo.ActionsRow).Components, 5)
	assert.Len(t, rows[1].(discordgo.ActionsRow).Components, 2)
}

func TestExecuteSelectMenu(t *testing.T) {
	d, _, components := newTestDispatcher(t)
	resp := &fakeResponder{}

	d.Execute(context.Background(), &model.Action{
		Type:    model.ActionSendMessage,
		Content: "classe?",
		SelectMenu: &model.SelectMenu{
			CustomID:  "classe",
			MaxValues: 2,
			Options: []model.SelectOption{
				{Label: "Mago", Value: "mago", Emoji: "🧙", Actions: []model.Action{{Type: model.ActionSendMessage, Content: "Mago!"}}},
				{Label: "Guerreiro", Value: "guerreiro", Emoji: "<:espada:123456789012345678>"},
			},
		},
	}, commandInvocation("x"), NewReplyTracker(resp))

	rows := resp.last().Msg.Components
	require.Len(t, rows, 1)
	menu := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, "classe", menu.CustomID)
	assert.Equal(t, defaultMenuPlaceholder, menu.Placeholder)
	assert.Nil(t, menu.MinValues)
	assert.Equal(t, 2, menu.MaxValues)
	require.Len(t, menu.Options, 2)
	assert.Equal(t, "🧙", menu.Options[0].Emoji.Name)
	assert.Equal(t, &discordgo.ComponentEmoji{Name: "espada", ID: "123456789012345678"}, menu.Options[1].Emoji)

	_, ok := components.Lookup("classe_mago")
	assert.True(t, ok)
	_, ok = components.Lookup("classe_guerreiro")
	assert.False(t, ok)
}

func TestParseEmoji(t *testing.T) {
	assert.Nil(t, parseEmoji(""))
	assert.Equal(t, &discordgo.ComponentEmoji{Name: "🔥"}, parseEmoji("🔥"))
	assert.Equal(t, &discordgo.ComponentEmoji{Name: "dance", ID: "123456789012345678", Animated: true}, parseEmoji("<a:dance:123456789012345678>"))
	assert.Equal(t, &discordgo.ComponentEmoji{ID: "123456789012345678"}, parseEmoji("123456789012345678"))
}
