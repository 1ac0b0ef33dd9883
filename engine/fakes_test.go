package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap/zaptest"

	"rpg-bot/model"
)

type responderCall struct {
	Kind string
	Msg  *model.Message
}

type fakeResponder struct {
	mu       sync.Mutex
	calls    []responderCall
	replyErr error
	deferErr error
}

func (f *fakeResponder) record(kind string, msg *model.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, responderCall{Kind: kind, Msg: msg})
}

func (f *fakeResponder) Reply(_ context.Context, msg *model.Message) error {
	if f.replyErr != nil {
		return f.replyErr
	}
	f.record("reply", msg)
	return nil
}

func (f *fakeResponder) Defer(context.Context) error {
	if f.deferErr != nil {
		return f.deferErr
	}
	f.record("defer", nil)
	return nil
}

func (f *fakeResponder) FollowUp(_ context.Context, msg *model.Message) error {
	f.record("followup", msg)
	return nil
}

func (f *fakeResponder) EditReply(_ context.Context, msg *model.Message) error {
	f.record("edit", msg)
	return nil
}

func (f *fakeResponder) Update(_ context.Context, msg *model.Message) error {
	f.record("update", msg)
	return nil
}

func (f *fakeResponder) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Kind
	}
	return out
}

func (f *fakeResponder) last() responderCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return responderCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeResponder) find(kind string) []*model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Message
	for _, c := range f.calls {
		if c.Kind == kind {
			out = append(out, c.Msg)
		}
	}
	return out
}

type platformCall struct {
	Op     string
	Target string
	Arg    string
	Msg    *model.Message
	Until  time.Time
}

type fakePlatform struct {
	mu       sync.Mutex
	calls    []platformCall
	roles    []*discordgo.Role
	rolesErr error
	sendErr  error
}

func (f *fakePlatform) record(c platformCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakePlatform) SendChannelMessage(_ context.Context, channelID string, msg *model.Message) error {
	f.record(platformCall{Op: "channel", Target: channelID, Msg: msg})
	return f.sendErr
}

func (f *fakePlatform) SendDirectMessage(_ context.Context, userID string, msg *model.Message) error {
	f.record(platformCall{Op: "dm", Target: userID, Msg: msg})
	return f.sendErr
}

func (f *fakePlatform) AddMemberRole(_ context.Context, guildID, userID, roleID string) error {
	f.record(platformCall{Op: "add_role", Target: userID, Arg: roleID})
	return nil
}

func (f *fakePlatform) RemoveMemberRole(_ context.Context, guildID, userID, roleID string) error {
	f.record(platformCall{Op: "remove_role", Target: userID, Arg: roleID})
	return nil
}

func (f *fakePlatform) TimeoutMember(_ context.Context, guildID, userID string, until time.Time, reason string) error {
	f.record(platformCall{Op: "timeout", Target: userID, Arg: reason, Until: until})
	return nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.record(platformCall{Op: "delete", Target: channelID, Arg: messageID})
	return nil
}

func (f *fakePlatform) GuildRoles(context.Context, string) ([]*discordgo.Role, error) {
	f.record(platformCall{Op: "roles"})
	return f.roles, f.rolesErr
}

func (f *fakePlatform) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Op
	}
	return out
}

func (f *fakePlatform) byOp(op string) []platformCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []platformCall
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeStore struct {
	book model.CommandBook
	err  error
}

func (s *fakeStore) Commands(context.Context) (model.CommandBook, error) {
	return s.book, s.err
}

var errBoom = errors.New("boom")

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEngine(t *testing.T, book model.CommandBook) (*Engine, *fakePlatform, *fakeClock) {
	t.Helper()
	platform := &fakePlatform{}
	clock := newFakeClock()
	e := New(&fakeStore{book: book}, platform, zaptest.NewLogger(t), WithClock(clock.Now))
	t.Cleanup(e.Close)
	return e, platform, clock
}

func commandInvocation(name string, args ...any) *model.Invocation {
	return &model.Invocation{
		Kind:        model.InvocationCommand,
		CommandName: name,
		User: model.User{
			ID:          "u1",
			Username:    "usuario",
			DisplayName: "Usuario",
			AvatarURL:   "https://cdn.example/avatar.png",
		},
		GuildID:   "g1",
		GuildName: "Taverna",
		ChannelID: "c1",
		Member:    &model.Member{Roles: []string{"r1"}},
		Arguments: args,
	}
}

func componentInvocation(id string, values ...string) *model.Invocation {
	inv := commandInvocation("")
	inv.Kind = model.InvocationComponent
	inv.ComponentID = id
	inv.Values = values
	inv.MessageID = "m1"
	return inv
}

// customIDs collects the custom ids of every interactive component.
func customIDs(rows []discordgo.MessageComponent) []string {
	var ids []string
	for _, r := range rows {
		row, ok := r.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range row.Components {
			switch v := c.(type) {
			case discordgo.Button:
				if v.CustomID != "" {
					ids = append(ids, v.CustomID)
				}
			case discordgo.SelectMenu:
				ids = append(ids, v.CustomID)
			}
		}
	}
	return ids
}

func ptr[T any](v T) *T { return &v }
