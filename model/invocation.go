package model

import "time"

type InvocationKind int

const (
	InvocationCommand InvocationKind = iota
	InvocationComponent
)

func (k InvocationKind) String() string {
	if k == InvocationComponent {
		return "component"
	}
	return "command"
}

type User struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
}

// Mention renders the chat mention for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Member carries the guild-scoped data of the invoking user. It is nil for
// invocations outside a guild.
type Member struct {
	Roles       []string
	Permissions int64
}

func (m *Member) HasRole(roleID string) bool {
	if m == nil {
		return false
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Invocation is one slash command trigger or one component re-entry.
type Invocation struct {
	Kind        InvocationKind
	CommandName string
	User        User
	GuildID     string
	GuildName   string
	ChannelID   string
	Member      *Member
	// Arguments holds the option values in declaration order.
	Arguments []any
	// Options holds the same values keyed by option name, as received.
	Options map[string]any
	// MessageID is the message a component was attached to.
	MessageID   string
	ComponentID string
	Values      []string
	ReceivedAt  time.Time
}

// InGuild reports whether the invocation originated in a guild.
func (inv *Invocation) InGuild() bool {
	return inv.GuildID != ""
}

// OrderArguments rebuilds Arguments from Options following the declared
// argument list. Options the user left out become nil. Without declared
// arguments or received options the current order is kept.
func (inv *Invocation) OrderArguments(declared []Argument) {
	if len(declared) == 0 || inv.Options == nil {
		return
	}
	args := make([]any, len(declared))
	for i, a := range declared {
		args[i] = inv.Options[a.Name]
	}
	inv.Arguments = args
}

// CooldownEntry is a live cooldown, exposed for introspection.
type CooldownEntry struct {
	UserID    string    `json:"userId"`
	Command   string    `json:"command"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PendingComponentEntry describes a registered component awaiting a click.
type PendingComponentEntry struct {
	ID      string `json:"id"`
	Actions int    `json:"actions"`
}
