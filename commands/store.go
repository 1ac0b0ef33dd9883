// Package commands loads command books from their configured source and
// turns them into slash command registrations.
package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rpg-bot/model"
)

var ErrNotFound = errors.New("command book not found")

// Store is a model.CommandStore that owns resources.
type Store interface {
	model.CommandStore
	Close() error
}

// New builds the store selected by cfg.CommandSource.
func New(cfg *model.Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.CommandSource() {
	case "api":
		return NewHTTPStore(cfg.CommandsAPIURL, nil, log), nil
	case "sqlite":
		s, err := OpenSQLiteStore(cfg.CommandsDB, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := NewFileStore(cfg.CommandsFile, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Load fetches and validates the current book from any store.
func Load(ctx context.Context, store model.CommandStore) (model.CommandBook, error) {
	book, err := store.Commands(ctx)
	if err != nil {
		return nil, err
	}
	if err := book.Validate(); err != nil {
		return book, fmt.Errorf("invalid command book: %w", err)
	}
	return book, nil
}
