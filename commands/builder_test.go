package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-bot/model"
)

func TestGenerateCommands(t *testing.T) {
	book := model.CommandBook{
		"fireball": model.Simple("Bola de fogo"),
		"ataque": model.Full(&model.CommandDefinition{
			Description: "Ataque",
			Arguments: []model.Argument{
				{Name: "bonus", Type: model.ArgumentInteger, Description: "Bônus", Required: true},
				{Name: "alvo", Type: model.ArgumentUser},
				{Name: "nota"},
			},
		}),
	}

	cmds, err := GenerateCommands(book)
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	assert.Equal(t, "ataque", cmds[0].Name)
	assert.Equal(t, "Executa o comando **ataque**", cmds[0].Description)
	require.Len(t, cmds[0].Options, 3)
	assert.Equal(t, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "bonus",
		Description: "Bônus",
		Required:    true,
	}, cmds[0].Options[0])
	assert.Equal(t, discordgo.ApplicationCommandOptionUser, cmds[0].Options[1].Type)
	assert.Equal(t, discordgo.ApplicationCommandOptionString, cmds[0].Options[2].Type)
	assert.Equal(t, "nota", cmds[0].Options[2].Description)

	assert.Equal(t, "fireball", cmds[1].Name)
	assert.Empty(t, cmds[1].Options)
}

func TestGenerateCommandsSkipsInvalidEntries(t *testing.T) {
	book := model.CommandBook{
		"ok":         model.Simple("ok"),
		"com espaço": model.Simple("x"),
		"ordem": model.Full(&model.CommandDefinition{
			Description: "x",
			Arguments: []model.Argument{
				{Name: "a"},
				{Name: "b", Required: true},
			},
		}),
		"tipo": model.Full(&model.CommandDefinition{
			Description: "x",
			Arguments:   []model.Argument{{Name: "a", Type: "canal"}},
		}),
	}

	cmds, err := GenerateCommands(book)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"com espaço"`)
	assert.Contains(t, err.Error(), `"ordem"`)
	assert.Contains(t, err.Error(), `"tipo"`)
	require.Len(t, cmds, 1)
	assert.Equal(t, "ok", cmds[0].Name)
}
