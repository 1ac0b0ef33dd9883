package engine

import (
	"sort"
	"sync"

	"rpg-bot/model"
)

// ComponentTable maps component ids to the actions they own. Entries live
// for the whole process; a later registration under the same id replaces
// the earlier one.
type ComponentTable struct {
	mu      sync.RWMutex
	entries map[string][]model.Action
}

func NewComponentTable() *ComponentTable {
	return &ComponentTable{entries: make(map[string][]model.Action)}
}

func (t *ComponentTable) Register(id string, actions []model.Action) {
	t.mu.Lock()
	t.entries[id] = actions
	t.mu.Unlock()
}

func (t *ComponentTable) Lookup(id string) ([]model.Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	actions, ok := t.entries[id]
	return actions, ok
}

func (t *ComponentTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Snapshot lists registered components sorted by id.
func (t *ComponentTable) Snapshot() []model.PendingComponentEntry {
	t.mu.RLock()
	out := make([]model.PendingComponentEntry, 0, len(t.entries))
	for id, actions := range t.entries {
		out = append(out, model.PendingComponentEntry{ID: id, Actions: len(actions)})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// menuEntryID is the table key of one select menu option.
func menuEntryID(menuID, value string) string {
	return menuID + "_" + value
}
