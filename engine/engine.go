// Package engine executes user-authored chat commands: it renders their
// templates, gates actions on conditions and cooldowns, dispatches side
// effects and routes clicks on the buttons and menus those actions create.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"rpg-bot/model"
)

var ErrUnknownCommand = errors.New("unknown command")

const (
	notFoundFormat     = "❌ Comando **%s** não encontrado."
	misconfiguredFmt   = "⚠️ O comando **%s** está mal configurado."
	genericFailure     = "❌ Ocorreu um erro ao processar o comando."
	acknowledgeContent = "✅"
)

// Engine owns the cooldown, pending component and confirmation tables for
// one process and handles every invocation against them.
type Engine struct {
	store    model.CommandStore
	platform model.Platform
	log      *zap.Logger
	now      func() time.Time

	renderer      *Renderer
	conditions    *Evaluator
	dispatcher    *Dispatcher
	cooldowns     *CooldownTracker
	components    *ComponentTable
	confirmations *confirmationTable
}

type Option func(*Engine)

// WithClock replaces the time source used for cooldowns and timeouts.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.cooldowns.now = now
		e.dispatcher.now = now
	}
}

func New(store model.CommandStore, platform model.Platform, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("engine")

	renderer := NewRenderer(log.Named("template"))
	conditions := NewEvaluator(renderer, platform, log.Named("conditions"))
	components := NewComponentTable()

	e := &Engine{
		store:         store,
		platform:      platform,
		log:           log,
		now:           time.Now,
		renderer:      renderer,
		conditions:    conditions,
		dispatcher:    NewDispatcher(renderer, conditions, components, platform, log.Named("dispatcher")),
		cooldowns:     NewCooldownTracker(),
		components:    components,
		confirmations: newConfirmationTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Cooldowns() *CooldownTracker { return e.cooldowns }

func (e *Engine) Components() *ComponentTable { return e.components }

// PendingConfirmations is the number of prompts awaiting an answer.
func (e *Engine) PendingConfirmations() int { return e.confirmations.len() }

// Close cancels pending timers.
func (e *Engine) Close() {
	e.cooldowns.Stop()
	e.confirmations.stopAll()
}

// Handle processes one invocation. It never panics and always leaves the
// interaction answered unless the invocation is a click on an unknown
// component.
func (e *Engine) Handle(ctx context.Context, inv *model.Invocation, responder model.Responder) {
	rt := NewReplyTracker(responder)
	log := e.log.With(
		zap.Stringer("kind", inv.Kind),
		zap.String("command", inv.CommandName),
		zap.String("component", inv.ComponentID),
		zap.String("user", inv.User.ID),
		zap.String("guild", inv.GuildID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling interaction",
				zap.Any("panic", r),
				zap.Stack("stack"))
			e.fail(ctx, rt, log)
		}
	}()

	var err error
	switch inv.Kind {
	case model.InvocationCommand:
		err = e.handleCommand(ctx, inv, rt)
	case model.InvocationComponent:
		err = e.handleComponent(ctx, inv, rt)
	default:
		err = fmt.Errorf("unsupported invocation kind %d", inv.Kind)
	}
	if err != nil {
		log.Error("interaction failed", zap.Error(err))
		e.fail(ctx, rt, log)
	}
}

func (e *Engine) fail(ctx context.Context, rt *ReplyTracker, log *zap.Logger) {
	if err := rt.Notify(ctx, genericFailure); err != nil {
		log.Warn("could not send failure notice", zap.Error(err))
	}
}

// Lookup resolves a command by name from the store.
func (e *Engine) Lookup(ctx context.Context, name string) (model.CommandEntry, error) {
	book, err := e.store.Commands(ctx)
	if err != nil {
		return model.CommandEntry{}, fmt.Errorf("load commands: %w", err)
	}
	entry, ok := book.Lookup(name)
	if !ok {
		return model.CommandEntry{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return entry, nil
}

func (e *Engine) handleCommand(ctx context.Context, inv *model.Invocation, rt *ReplyTracker) error {
	entry, err := e.Lookup(ctx, inv.CommandName)
	if errors.Is(err, ErrUnknownCommand) {
		return rt.Reply(ctx, &model.Message{
			Content:   fmt.Sprintf(notFoundFormat, inv.CommandName),
			Ephemeral: true,
		})
	}
	if err != nil {
		return err
	}

	if err := entry.Validate(); err != nil {
		e.log.Warn("command definition is invalid",
			zap.String("command", inv.CommandName),
			zap.Error(err))
		return rt.Reply(ctx, &model.Message{
			Content:   fmt.Sprintf(misconfiguredFmt, inv.CommandName),
			Ephemeral: true,
		})
	}

	return e.runCommand(ctx, inv, entry, rt, false)
}

// runCommand is a top-level execution: the only path that arms cooldowns.
// confirmed skips the confirmation prompt.
func (e *Engine) runCommand(ctx context.Context, inv *model.Invocation, entry model.CommandEntry, rt *ReplyTracker, confirmed bool) error {
	def := entry.Definition
	if def == nil {
		return rt.Reply(ctx, &model.Message{
			Embeds: []*discordgo.MessageEmbed{simpleEmbed(entry.Text, inv)},
		})
	}

	inv.OrderArguments(def.Arguments)

	if def.Cooldown > 0 {
		if secs, ok := e.cooldowns.Remaining(inv.User.ID, inv.CommandName); ok {
			return rt.Reply(ctx, cooldownNotice(inv, secs, e.now()))
		}
	}

	if def.RequireConfirmation && !confirmed {
		return e.askConfirmation(ctx, inv, entry, rt)
	}

	embed := e.baseEmbed(def, inv)
	e.cooldowns.Arm(inv.User.ID, inv.CommandName, def.Cooldown)

	if len(def.Actions) == 0 {
		return rt.Reply(ctx, &model.Message{Embeds: []*discordgo.MessageEmbed{embed}})
	}

	if err := rt.Defer(ctx); err != nil {
		return fmt.Errorf("defer reply: %w", err)
	}
	e.dispatcher.ExecuteAll(ctx, def.Actions, inv, rt)

	if rt.Replied() {
		return nil
	}
	if hasRealDescription(def) {
		return rt.EditReply(ctx, &model.Message{Embeds: []*discordgo.MessageEmbed{embed}})
	}
	return rt.EditReply(ctx, &model.Message{
		Content: acknowledgeContent,
		Embeds:  []*discordgo.MessageEmbed{},
	})
}

// handleComponent re-enters the engine from a button click or menu
// selection. Unknown components are ignored.
func (e *Engine) handleComponent(ctx context.Context, inv *model.Invocation, rt *ReplyTracker) error {
	if isConfirmationID(inv.ComponentID) {
		return e.resolveConfirmation(ctx, inv, rt)
	}

	var lists [][]model.Action
	if len(inv.Values) > 0 {
		for _, v := range inv.Values {
			if actions, ok := e.components.Lookup(menuEntryID(inv.ComponentID, v)); ok {
				lists = append(lists, actions)
			}
		}
	} else if actions, ok := e.components.Lookup(inv.ComponentID); ok {
		lists = append(lists, actions)
	}

	if len(lists) == 0 {
		e.log.Debug("click on unknown component", zap.String("component", inv.ComponentID))
		return nil
	}

	if err := rt.Defer(ctx); err != nil {
		return fmt.Errorf("defer reply: %w", err)
	}
	for _, actions := range lists {
		e.dispatcher.ExecuteAll(ctx, actions, inv, rt)
	}

	// The first follow-up after a defer takes over the deferred message, so
	// only a click that produced no output gets the acknowledgement.
	if rt.Sent() {
		return nil
	}
	return rt.EditReply(ctx, &model.Message{Content: acknowledgeContent})
}
