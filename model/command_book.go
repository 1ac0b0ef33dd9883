package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommandEntry is either a legacy plain-text command (Simple) or a full
// definition. Exactly one of Text and Definition is meaningful: Definition
// is nil for simple entries.
type CommandEntry struct {
	Text       string
	Definition *CommandDefinition
}

func Simple(text string) CommandEntry {
	return CommandEntry{Text: text}
}

func Full(def *CommandDefinition) CommandEntry {
	return CommandEntry{Definition: def}
}

func (e CommandEntry) IsSimple() bool {
	return e.Definition == nil
}

// Validate checks the entry shape. Simple entries only need text.
func (e CommandEntry) Validate() error {
	if e.Definition == nil {
		if strings.TrimSpace(e.Text) == "" {
			return errors.New("command text is empty")
		}
		return nil
	}
	return e.Definition.Validate()
}

func (e *CommandEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*e = Simple(text)
		return nil
	}
	var def CommandDefinition
	if err := json.Unmarshal(trimmed, &def); err != nil {
		return fmt.Errorf("decode command definition: %w", err)
	}
	*e = Full(&def)
	return nil
}

func (e CommandEntry) MarshalJSON() ([]byte, error) {
	if e.Definition == nil {
		return json.Marshal(e.Text)
	}
	return json.Marshal(e.Definition)
}

func (e *CommandEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*e = Simple(value.Value)
		return nil
	}
	var def CommandDefinition
	if err := value.Decode(&def); err != nil {
		return fmt.Errorf("decode command definition: %w", err)
	}
	*e = Full(&def)
	return nil
}

func (e CommandEntry) MarshalYAML() (any, error) {
	if e.Definition == nil {
		return e.Text, nil
	}
	return e.Definition, nil
}

// CommandBook maps command names to their entries.
type CommandBook map[string]CommandEntry

// Lookup finds a command by name, ignoring case.
func (b CommandBook) Lookup(name string) (CommandEntry, bool) {
	if e, ok := b[name]; ok {
		return e, true
	}
	e, ok := b[strings.ToLower(name)]
	return e, ok
}

// Names returns the command names in sorted order.
func (b CommandBook) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize lowercases every key. Two keys that collide after lowercasing
// are reported as an error.
func (b CommandBook) Normalize() (CommandBook, error) {
	out := make(CommandBook, len(b))
	for name, e := range b {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, errors.New("command with empty name")
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("duplicate command name %q", key)
		}
		out[key] = e
	}
	return out, nil
}

// Validate returns every per-command problem joined together.
func (b CommandBook) Validate() error {
	var errs []error
	for _, name := range b.Names() {
		if err := b[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("command %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// DecodeCommandBook parses a JSON or YAML book. format is "json" or "yaml".
func DecodeCommandBook(data []byte, format string) (CommandBook, error) {
	var book CommandBook
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &book); err != nil {
			return nil, fmt.Errorf("decode yaml command book: %w", err)
		}
	case "json", "":
		if err := json.Unmarshal(data, &book); err != nil {
			return nil, fmt.Errorf("decode json command book: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported command book format %q", format)
	}
	if book == nil {
		book = CommandBook{}
	}
	return book.Normalize()
}
