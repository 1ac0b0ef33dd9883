package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const jsonBook = `{
	"Fireball": "🔥 Bola de fogo!",
	"ataque": {
		"description": "{{ user }} ataca",
		"cooldown": 5,
		"arguments": [{"name": "dano", "type": "integer", "required": true}],
		"actions": [{
			"type": "send_message",
			"content": "ok",
			"conditions": [{"type": "chance", "chance": 50}],
			"buttons": [{"label": "Mais", "customId": "mais", "actions": [{"type": "send_message", "content": "de novo"}]}]
		}]
	}
}`

const yamlBook = `
fireball: "🔥 Bola de fogo!"
cura:
  description: cura
  actions:
    - type: random_reply
      messages: [a, b]
`

func TestDecodeJSONBook(t *testing.T) {
	book, err := DecodeCommandBook([]byte(jsonBook), "json")
	require.NoError(t, err)

	assert.Equal(t, []string{"ataque", "fireball"}, book.Names())

	fireball := book["fireball"]
	assert.True(t, fireball.IsSimple())
	assert.Equal(t, "🔥 Bola de fogo!", fireball.Text)

	ataque := book["ataque"]
	require.False(t, ataque.IsSimple())
	def := ataque.Definition
	assert.Equal(t, 5, def.Cooldown)
	require.Len(t, def.Actions, 1)
	assert.Equal(t, ActionSendMessage, def.Actions[0].Type)
	require.NotNil(t, def.Actions[0].Conditions[0].Chance)
	assert.Equal(t, 50.0, *def.Actions[0].Conditions[0].Chance)
	assert.Equal(t, "de novo", def.Actions[0].Buttons[0].Actions[0].Content)
	assert.NoError(t, book.Validate())
}

func TestDecodeYAMLBook(t *testing.T) {
	book, err := DecodeCommandBook([]byte(yamlBook), "yaml")
	require.NoError(t, err)

	assert.True(t, book["fireball"].IsSimple())
	assert.Equal(t, []string{"a", "b"}, book["cura"].Definition.Actions[0].Messages)
}

func TestDecodeEmptyAndUnknownFormat(t *testing.T) {
	book, err := DecodeCommandBook([]byte("{}"), "")
	require.NoError(t, err)
	assert.Empty(t, book)

	_, err = DecodeCommandBook([]byte("{}"), "toml")
	assert.Error(t, err)

	_, err = DecodeCommandBook([]byte(`{"x": 3}`), "json")
	assert.Error(t, err)
}

func TestNormalizeRejectsCollisions(t *testing.T) {
	_, err := CommandBook{"Dado": Simple("a"), "dado": Simple("b")}.Normalize()
	assert.ErrorContains(t, err, "duplicate")

	_, err = CommandBook{"  ": Simple("a")}.Normalize()
	assert.Error(t, err)
}

func TestLookupIgnoresCase(t *testing.T) {
	book := CommandBook{"dado": Simple("🎲")}

	e, ok := book.Lookup("DADO")
	assert.True(t, ok)
	assert.Equal(t, "🎲", e.Text)

	_, ok = book.Lookup("moeda")
	assert.False(t, ok)
}

func TestEntryMarshalKeepsShape(t *testing.T) {
	book := CommandBook{
		"simples": Simple("oi"),
		"cheio":   Full(&CommandDefinition{Description: "d"}),
	}

	data, err := json.Marshal(book)
	require.NoError(t, err)
	assert.JSONEq(t, `{"simples":"oi","cheio":{"description":"d"}}`, string(data))

	out, err := yaml.Marshal(book)
	require.NoError(t, err)
	back, err := DecodeCommandBook(out, "yaml")
	require.NoError(t, err)
	assert.Equal(t, book, back)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	book := CommandBook{
		"vazio":    Simple("  "),
		"sem_nada": Full(&CommandDefinition{}),
		"ruim": Full(&CommandDefinition{
			Cooldown: -1,
			Actions: []Action{
				{Type: "explode"},
				{Type: ActionRandomReply},
				{Type: ActionSendMessage, Buttons: []Button{{Label: "site", Style: ButtonLink}}},
				{Type: ActionSendMessage, SelectMenu: &SelectMenu{}},
			},
			Arguments: []Argument{{}},
		}),
	}

	err := book.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		`command "vazio"`,
		`command "sem_nada"`,
		"cooldown must be positive",
		`unknown action type "explode"`,
		"random_reply needs at least one message",
		"link button needs a url",
		"selectMenu: customId is required",
		"selectMenu: at least one option is required",
		"arguments[0]: name is required",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestNestedActionsAreValidated(t *testing.T) {
	def := &CommandDefinition{
		Description: "d",
		Actions: []Action{{
			Type: ActionSendMessage,
			SelectMenu: &SelectMenu{
				CustomID: "m",
				Options:  []SelectOption{{Label: "a", Value: "a", Actions: []Action{{Type: "nope"}}}},
			},
		}},
	}
	assert.ErrorContains(t, def.Validate(), "selectMenu.options[0].actions[0]")
}

func TestOrderArguments(t *testing.T) {
	inv := &Invocation{
		Arguments: []any{"b", "a"},
		Options:   map[string]any{"a": "A", "b": "B"},
	}
	inv.OrderArguments([]Argument{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	assert.Equal(t, []any{"A", "B", nil}, inv.Arguments)

	untouched := &Invocation{Arguments: []any{1}}
	untouched.OrderArguments([]Argument{{Name: "x"}})
	assert.Equal(t, []any{1}, untouched.Arguments)
}

func TestMemberHasRole(t *testing.T) {
	var none *Member
	assert.False(t, none.HasRole("1"))
	assert.True(t, (&Member{Roles: []string{"1", "2"}}).HasRole("2"))
}

func TestReservedComponentIDsAreRejected(t *testing.T) {
	def := &CommandDefinition{
		Description: "d",
		Actions: []Action{{
			Type: ActionSendMessage,
			Buttons: []Button{
				{Label: "sim", CustomID: ConfirmIDPrefix + "meu"},
				{Label: "não", CustomID: CancelIDPrefix + "meu"},
				{Label: "ok", CustomID: "confirmar"},
			},
			SelectMenu: &SelectMenu{
				CustomID: ConfirmIDPrefix + "menu",
				Options:  []SelectOption{{Label: "a", Value: "a"}},
			},
		}},
	}

	err := def.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "buttons[0]: customId")
	assert.Contains(t, msg, "buttons[1]: customId")
	assert.NotContains(t, msg, "buttons[2]")
	assert.Contains(t, msg, "selectMenu: customId \"confirm_cmd_menu\" uses a reserved prefix")
}
