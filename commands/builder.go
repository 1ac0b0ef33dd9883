package commands

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"rpg-bot/model"
)

var commandNameRe = regexp.MustCompile(`^[-_\p{Ll}\p{N}]{1,32}$`)

var optionTypes = map[string]discordgo.ApplicationCommandOptionType{
	"":                    discordgo.ApplicationCommandOptionString,
	model.ArgumentString:  discordgo.ApplicationCommandOptionString,
	model.ArgumentInteger: discordgo.ApplicationCommandOptionInteger,
	model.ArgumentNumber:  discordgo.ApplicationCommandOptionNumber,
	model.ArgumentBoolean: discordgo.ApplicationCommandOptionBoolean,
	model.ArgumentUser:    discordgo.ApplicationCommandOptionUser,
}

// GenerateCommands builds one slash command per book entry, sorted by name.
// Entries that cannot be registered are skipped and reported in the error;
// the remaining commands are still returned.
func GenerateCommands(book model.CommandBook) ([]*discordgo.ApplicationCommand, error) {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(book))
	var errs []error
	for _, name := range book.Names() {
		cmd, err := buildCommand(name, book[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("command %q: %w", name, err))
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, errors.Join(errs...)
}

func buildCommand(name string, entry model.CommandEntry) (*discordgo.ApplicationCommand, error) {
	if !commandNameRe.MatchString(name) {
		return nil, errors.New("name must be 1-32 lowercase letters, digits, - or _")
	}
	cmd := &discordgo.ApplicationCommand{
		Name:        name,
		Description: fmt.Sprintf("Executa o comando **%s**", name),
	}
	if entry.Definition == nil {
		return cmd, nil
	}

	optional := false
	for i, arg := range entry.Definition.Arguments {
		typ, ok := optionTypes[arg.Type]
		if !ok {
			return nil, fmt.Errorf("arguments[%d]: unknown type %q", i, arg.Type)
		}
		if !commandNameRe.MatchString(arg.Name) {
			return nil, fmt.Errorf("arguments[%d]: invalid option name %q", i, arg.Name)
		}
		if arg.Required && optional {
			return nil, fmt.Errorf("arguments[%d]: required option %q follows an optional one", i, arg.Name)
		}
		optional = optional || !arg.Required

		desc := arg.Description
		if desc == "" {
			desc = arg.Name
		}
		cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
			Type:        typ,
			Name:        arg.Name,
			Description: truncateRunes(desc, 100),
			Required:    arg.Required,
		})
	}
	return cmd, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
