package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rpg-bot/model"
)

const (
	confirmPrefix = model.ConfirmIDPrefix
	cancelPrefix  = model.CancelIDPrefix

	confirmationTTL = 15 * time.Minute
)

type pendingConfirmation struct {
	inv   model.Invocation
	entry model.CommandEntry
	stop  func() bool
}

// confirmationTable holds prompts waiting for Confirm or Cancel. Each entry
// is used at most once and is dropped after confirmationTTL.
type confirmationTable struct {
	mu      sync.Mutex
	entries map[string]*pendingConfirmation
}

func newConfirmationTable() *confirmationTable {
	return &confirmationTable{entries: make(map[string]*pendingConfirmation)}
}

func (t *confirmationTable) add(id string, p *pendingConfirmation) {
	p.stop = time.AfterFunc(confirmationTTL, func() {
		t.take(id)
	}).Stop

	t.mu.Lock()
	t.entries[id] = p
	t.mu.Unlock()
}

func (t *confirmationTable) get(id string) (*pendingConfirmation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[id]
	return p, ok
}

// take removes and returns the entry. Only one caller wins a given id.
func (t *confirmationTable) take(id string) (*pendingConfirmation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	delete(t.entries, id)
	if p.stop != nil {
		p.stop()
	}
	return p, true
}

func (t *confirmationTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *confirmationTable) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, p := range t.entries {
		if p.stop != nil {
			p.stop()
		}
		delete(t.entries, id)
	}
}

func isConfirmationID(id string) bool {
	return model.IsReservedComponentID(id)
}

// askConfirmation stores a snapshot of the invocation and shows an
// ephemeral Confirm/Cancel prompt.
func (e *Engine) askConfirmation(ctx context.Context, inv *model.Invocation, entry model.CommandEntry, rt *ReplyTracker) error {
	def := entry.Definition
	content := fmt.Sprintf("⚠️ Tem certeza que deseja executar **/%s**?", inv.CommandName)
	if def.ConfirmationMessage != "" {
		content = e.renderer.Render(def.ConfirmationMessage, inv)
	}

	id := uuid.NewString()
	e.confirmations.add(id, &pendingConfirmation{inv: *inv, entry: entry})

	err := rt.Reply(ctx, &model.Message{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Confirmar", Style: discordgo.SuccessButton, CustomID: confirmPrefix + id},
				discordgo.Button{Label: "Cancelar", Style: discordgo.DangerButton, CustomID: cancelPrefix + id},
			}},
		},
		Ephemeral: true,
	})
	if err != nil {
		e.confirmations.take(id)
		return fmt.Errorf("send confirmation prompt: %w", err)
	}
	return nil
}

// resolveConfirmation handles a click on a Confirm or Cancel button.
func (e *Engine) resolveConfirmation(ctx context.Context, inv *model.Invocation, rt *ReplyTracker) error {
	confirmed := strings.HasPrefix(inv.ComponentID, confirmPrefix)
	id := strings.TrimPrefix(strings.TrimPrefix(inv.ComponentID, confirmPrefix), cancelPrefix)

	p, ok := e.confirmations.get(id)
	if !ok {
		return rt.Notify(ctx, "⌛ Esta confirmação expirou.")
	}
	if p.inv.User.ID != inv.User.ID {
		return rt.Notify(ctx, "❌ Esta confirmação não é sua.")
	}
	if _, ok := e.confirmations.take(id); !ok {
		return nil
	}

	if !confirmed {
		e.log.Debug("command cancelled",
			zap.String("command", p.inv.CommandName),
			zap.String("user", inv.User.ID))
		return rt.Update(ctx, &model.Message{
			Content:    fmt.Sprintf("❌ Execução de **/%s** cancelada.", p.inv.CommandName),
			Components: []discordgo.MessageComponent{},
		})
	}

	snapshot := p.inv
	return e.runCommand(ctx, &snapshot, p.entry, rt, true)
}
