package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"rpg-bot/model"
	"rpg-bot/utils/database"
)

// SQLiteStore keeps one row per command. Each call reads the table, so rows
// written by another process show up on the next invocation.
type SQLiteStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

func OpenSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := database.InitCommandsDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, log: log.Named("sqlite_store")}, nil
}

func (s *SQLiteStore) Commands(ctx context.Context) (model.CommandBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return database.LoadCommandBook(s.db)
}

// Get loads a single command.
func (s *SQLiteStore) Get(name string) (model.CommandEntry, error) {
	entry, err := database.GetCommand(s.db, name)
	if errors.Is(err, database.ErrCommandNotFound) {
		return model.CommandEntry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, err
}

func (s *SQLiteStore) Put(name string, entry model.CommandEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("command %q: %w", name, err)
	}
	return database.UpsertCommand(s.db, name, entry)
}

func (s *SQLiteStore) Delete(name string) error {
	err := database.DeleteCommand(s.db, name)
	if errors.Is(err, database.ErrCommandNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// Import replaces or adds every command of book.
func (s *SQLiteStore) Import(book model.CommandBook) error {
	if err := database.ImportCommandBook(s.db, book); err != nil {
		return err
	}
	s.log.Info("command book imported", zap.Int("commands", len(book)))
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
