package model

import (
	"errors"
	"fmt"
	"strings"
)

// ActionType names the side effect an Action performs.
type ActionType string

const (
	ActionSendMessage   ActionType = "send_message"
	ActionSendChannel   ActionType = "send_channel"
	ActionSendDM        ActionType = "send_dm"
	ActionRandomReply   ActionType = "random_reply"
	ActionAddRole       ActionType = "add_role"
	ActionRemoveRole    ActionType = "remove_role"
	ActionDeleteMessage ActionType = "delete_message"
	ActionTimeoutUser   ActionType = "timeout_user"
)

// Known reports whether t is one of the supported action types.
func (t ActionType) Known() bool {
	switch t {
	case ActionSendMessage, ActionSendChannel, ActionSendDM, ActionRandomReply,
		ActionAddRole, ActionRemoveRole, ActionDeleteMessage, ActionTimeoutUser:
		return true
	}
	return false
}

// ConditionType selects which fields of a Condition are meaningful.
type ConditionType string

const (
	ConditionComparison ConditionType = "comparison"
	ConditionChance     ConditionType = "chance"
	ConditionPermission ConditionType = "permission"
	ConditionRole       ConditionType = "role"
	ConditionChannel    ConditionType = "channel"
	ConditionUser       ConditionType = "user"
)

// Condition is a predicate gating an Action. Value1 and Value2 keep whatever
// the decoder produced (number, string, bool or nil when absent).
type Condition struct {
	Type       ConditionType `json:"type" yaml:"type"`
	Value1     any           `json:"value1,omitempty" yaml:"value1,omitempty"`
	Operator   string        `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value2     any           `json:"value2,omitempty" yaml:"value2,omitempty"`
	Chance     *float64      `json:"chance,omitempty" yaml:"chance,omitempty"`
	Permission string        `json:"permission,omitempty" yaml:"permission,omitempty"`
	RoleID     string        `json:"roleId,omitempty" yaml:"roleId,omitempty"`
	RoleName   string        `json:"roleName,omitempty" yaml:"roleName,omitempty"`
	ChannelID  string        `json:"channelId,omitempty" yaml:"channelId,omitempty"`
	UserID     string        `json:"userId,omitempty" yaml:"userId,omitempty"`
}

// Button styles as written in command definitions.
const (
	ButtonPrimary   = "Primary"
	ButtonSecondary = "Secondary"
	ButtonSuccess   = "Success"
	ButtonDanger    = "Danger"
	ButtonLink      = "Link"
)

// Custom id prefixes reserved for confirmation prompts. Authored buttons and
// menus may not use them.
const (
	ConfirmIDPrefix = "confirm_cmd_"
	CancelIDPrefix  = "cancel_cmd_"
)

func IsReservedComponentID(id string) bool {
	return strings.HasPrefix(id, ConfirmIDPrefix) || strings.HasPrefix(id, CancelIDPrefix)
}

type Button struct {
	Label    string   `json:"label" yaml:"label"`
	Style    string   `json:"style,omitempty" yaml:"style,omitempty"`
	CustomID string   `json:"customId,omitempty" yaml:"customId,omitempty"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Emoji    string   `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Actions  []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

type SelectOption struct {
	Label       string   `json:"label" yaml:"label"`
	Value       string   `json:"value" yaml:"value"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Emoji       string   `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Actions     []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

type SelectMenu struct {
	CustomID    string         `json:"customId" yaml:"customId"`
	Placeholder string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MinValues   int            `json:"minValues,omitempty" yaml:"minValues,omitempty"`
	MaxValues   int            `json:"maxValues,omitempty" yaml:"maxValues,omitempty"`
	Options     []SelectOption `json:"options" yaml:"options"`
}

// ActionEmbed holds template sub-fields rendered into an embed.
type ActionEmbed struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Footer      string `json:"footer,omitempty" yaml:"footer,omitempty"`
}

// Action is one declarative step of a command. Buttons and select options
// own nested action lists, so a command is a tree of actions.
type Action struct {
	Type       ActionType   `json:"type" yaml:"type"`
	Conditions []Condition  `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Content    string       `json:"content,omitempty" yaml:"content,omitempty"`
	Messages   []string     `json:"messages,omitempty" yaml:"messages,omitempty"`
	ChannelID  string       `json:"channelId,omitempty" yaml:"channelId,omitempty"`
	UserID     string       `json:"userId,omitempty" yaml:"userId,omitempty"`
	RoleID     string       `json:"roleId,omitempty" yaml:"roleId,omitempty"`
	Duration   int          `json:"duration,omitempty" yaml:"duration,omitempty"`
	Embed      *ActionEmbed `json:"embed,omitempty" yaml:"embed,omitempty"`
	Buttons    []Button     `json:"buttons,omitempty" yaml:"buttons,omitempty"`
	SelectMenu *SelectMenu  `json:"selectMenu,omitempty" yaml:"selectMenu,omitempty"`
}

// Argument types accepted for slash command options.
const (
	ArgumentString  = "string"
	ArgumentInteger = "integer"
	ArgumentNumber  = "number"
	ArgumentBoolean = "boolean"
	ArgumentUser    = "user"
)

// Argument declares a positional slash command option read by arguments.get.
type Argument struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

type CommandDefinition struct {
	Description         string     `json:"description,omitempty" yaml:"description,omitempty"`
	Title               string     `json:"title,omitempty" yaml:"title,omitempty"`
	Color               string     `json:"color,omitempty" yaml:"color,omitempty"`
	AuthorName          string     `json:"author_name,omitempty" yaml:"author_name,omitempty"`
	AuthorURL           string     `json:"author_url,omitempty" yaml:"author_url,omitempty"`
	AuthorIcon          string     `json:"author_icon,omitempty" yaml:"author_icon,omitempty"`
	ThumbnailURL        string     `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	FooterText          string     `json:"footer_text,omitempty" yaml:"footer_text,omitempty"`
	FooterIcon          string     `json:"footer_icon,omitempty" yaml:"footer_icon,omitempty"`
	Gif                 string     `json:"gif,omitempty" yaml:"gif,omitempty"`
	Cooldown            int        `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`
	Actions             []Action   `json:"actions,omitempty" yaml:"actions,omitempty"`
	RequireConfirmation bool       `json:"requireConfirmation,omitempty" yaml:"requireConfirmation,omitempty"`
	ConfirmationMessage string     `json:"confirmationMessage,omitempty" yaml:"confirmationMessage,omitempty"`
	Arguments           []Argument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Validate re-checks the invariants the command editor is expected to enforce.
func (d *CommandDefinition) Validate() error {
	var errs []error
	if d.Description == "" && len(d.Actions) == 0 {
		errs = append(errs, errors.New("description is required when there are no actions"))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be positive, got %d", d.Cooldown))
	}
	for i, a := range d.Actions {
		if err := a.validate(); err != nil {
			errs = append(errs, fmt.Errorf("actions[%d]: %w", i, err))
		}
	}
	for i, arg := range d.Arguments {
		if arg.Name == "" {
			errs = append(errs, fmt.Errorf("arguments[%d]: name is required", i))
		}
	}
	return errors.Join(errs...)
}

func (a *Action) validate() error {
	var errs []error
	if !a.Type.Known() {
		errs = append(errs, fmt.Errorf("unknown action type %q", a.Type))
	}
	if a.Type == ActionRandomReply && len(a.Messages) == 0 && a.Content == "" {
		errs = append(errs, errors.New("random_reply needs at least one message"))
	}
	for i, b := range a.Buttons {
		if b.Style == ButtonLink && b.URL == "" {
			errs = append(errs, fmt.Errorf("buttons[%d]: link button needs a url", i))
		}
		if IsReservedComponentID(b.CustomID) {
			errs = append(errs, fmt.Errorf("buttons[%d]: customId %q uses a reserved prefix", i, b.CustomID))
		}
		for j, nested := range b.Actions {
			if err := nested.validate(); err != nil {
				errs = append(errs, fmt.Errorf("buttons[%d].actions[%d]: %w", i, j, err))
			}
		}
	}
	if m := a.SelectMenu; m != nil {
		if m.CustomID == "" {
			errs = append(errs, errors.New("selectMenu: customId is required"))
		}
		if IsReservedComponentID(m.CustomID) {
			errs = append(errs, fmt.Errorf("selectMenu: customId %q uses a reserved prefix", m.CustomID))
		}
		if len(m.Options) == 0 {
			errs = append(errs, errors.New("selectMenu: at least one option is required"))
		}
		for i, o := range m.Options {
			for j, nested := range o.Actions {
				if err := nested.validate(); err != nil {
					errs = append(errs, fmt.Errorf("selectMenu.options[%d].actions[%d]: %w", i, j, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}
