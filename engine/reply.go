package engine

import (
	"context"
	"sync"

	"rpg-bot/model"
)

// ReplyTracker wraps a Responder and remembers whether the interaction has
// been acknowledged (deferred) or answered (replied). Follow-ups do not
// count as answering but do count as sent output.
type ReplyTracker struct {
	responder model.Responder

	mu       sync.Mutex
	replied  bool
	deferred bool
	sent     bool
}

func NewReplyTracker(r model.Responder) *ReplyTracker {
	return &ReplyTracker{responder: r}
}

func (t *ReplyTracker) Replied() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replied
}

// Sent reports whether any message reached the interaction, follow-ups
// included.
func (t *ReplyTracker) Sent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent
}

// Acknowledged reports whether the platform already received a response.
func (t *ReplyTracker) Acknowledged() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replied || t.deferred
}

func (t *ReplyTracker) Reply(ctx context.Context, msg *model.Message) error {
	if err := t.responder.Reply(ctx, msg); err != nil {
		return err
	}
	t.mu.Lock()
	t.replied, t.sent = true, true
	t.mu.Unlock()
	return nil
}

func (t *ReplyTracker) Defer(ctx context.Context) error {
	if t.Acknowledged() {
		return nil
	}
	if err := t.responder.Defer(ctx); err != nil {
		return err
	}
	t.mu.Lock()
	t.deferred = true
	t.mu.Unlock()
	return nil
}

func (t *ReplyTracker) FollowUp(ctx context.Context, msg *model.Message) error {
	if err := t.responder.FollowUp(ctx, msg); err != nil {
		return err
	}
	t.mu.Lock()
	t.sent = true
	t.mu.Unlock()
	return nil
}

func (t *ReplyTracker) EditReply(ctx context.Context, msg *model.Message) error {
	if err := t.responder.EditReply(ctx, msg); err != nil {
		return err
	}
	t.mu.Lock()
	t.replied, t.sent = true, true
	t.mu.Unlock()
	return nil
}

func (t *ReplyTracker) Update(ctx context.Context, msg *model.Message) error {
	if err := t.responder.Update(ctx, msg); err != nil {
		return err
	}
	t.mu.Lock()
	t.replied, t.sent = true, true
	t.mu.Unlock()
	return nil
}

// Send replies when nothing has been sent yet and follows up otherwise.
func (t *ReplyTracker) Send(ctx context.Context, msg *model.Message) error {
	if t.Acknowledged() {
		return t.FollowUp(ctx, msg)
	}
	return t.Reply(ctx, msg)
}

// Notify sends an ephemeral notice through whichever path is still open.
func (t *ReplyTracker) Notify(ctx context.Context, content string) error {
	return t.Send(ctx, &model.Message{Content: content, Ephemeral: true})
}
