package engine

import (
	"math"
	"sort"
	"sync"
	"time"

	"rpg-bot/model"
)

type cooldownEntry struct {
	userID  string
	command string
	expiry  time.Time
	stop    func() bool
}

// CooldownTracker gates commands per (user, command). Entries remove
// themselves when they expire.
type CooldownTracker struct {
	mu      sync.Mutex
	entries map[string]*cooldownEntry

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) (stop func() bool)
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		entries: make(map[string]*cooldownEntry),
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

func cooldownKey(userID, command string) string {
	return userID + "-" + command
}

// Remaining returns the whole seconds left, rounded up, and whether the
// cooldown is active. It never changes state.
func (t *CooldownTracker) Remaining(userID, command string) (int, bool) {
	t.mu.Lock()
	e, ok := t.entries[cooldownKey(userID, command)]
	t.mu.Unlock()
	if !ok {
		return 0, false
	}

	left := e.expiry.Sub(t.now())
	if left <= 0 {
		return 0, false
	}
	return int(math.Ceil(left.Seconds())), true
}

// Arm starts or restarts the cooldown for seconds.
func (t *CooldownTracker) Arm(userID, command string, seconds int) {
	if seconds <= 0 {
		return
	}
	key := cooldownKey(userID, command)
	d := time.Duration(seconds) * time.Second
	e := &cooldownEntry{
		userID:  userID,
		command: command,
		expiry:  t.now().Add(d),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.entries[key]; ok && old.stop != nil {
		old.stop()
	}
	t.entries[key] = e
	e.stop = t.afterFunc(d, func() {
		t.expire(key, e)
	})
}

// expire removes the entry only if it has not been replaced by a later Arm.
func (t *CooldownTracker) expire(key string, e *cooldownEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.entries[key]; ok && cur == e {
		delete(t.entries, key)
	}
}

// Snapshot lists live cooldowns ordered by expiry.
func (t *CooldownTracker) Snapshot() []model.CooldownEntry {
	t.mu.Lock()
	out := make([]model.CooldownEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, model.CooldownEntry{
			UserID:    e.userID,
			Command:   e.command,
			ExpiresAt: e.expiry,
		})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}

func (t *CooldownTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Stop cancels every pending expiry timer and clears the table.
func (t *CooldownTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, e := range t.entries {
		if e.stop != nil {
			e.stop()
		}
		delete(t.entries, key)
	}
}
