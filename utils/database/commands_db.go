package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"rpg-bot/model"
)

// ErrCommandNotFound is returned when no row exists for a command name.
var ErrCommandNotFound = errors.New("command not found in database")

// CommandRow is one stored command. Body holds the JSON form of the entry,
// either a string or a definition object.
type CommandRow struct {
	Name      string `db:"name"`
	Body      string `db:"body"`
	UpdatedAt int64  `db:"updated_at"`
}

// InitCommandsDB opens the database and ensures the commands table exists.
func InitCommandsDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS commands (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create commands table: %w", err)
	}

	// Older databases predate the updated_at column.
	_, err = db.Exec(`ALTER TABLE commands ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`)
	if err != nil && !strings.Contains(err.Error(), "duplicate column name") {
		db.Close()
		return nil, fmt.Errorf("failed to migrate commands table: %w", err)
	}

	return db, nil
}

// UpsertCommand stores an entry under its lowercase name.
func UpsertCommand(db *sqlx.DB, name string, entry model.CommandEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode command %s: %w", name, err)
	}
	row := CommandRow{
		Name:      strings.ToLower(name),
		Body:      string(body),
		UpdatedAt: time.Now().Unix(),
	}
	query := `INSERT INTO commands (name, body, updated_at) VALUES (:name, :body, :updated_at)
			  ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	if _, err := db.NamedExec(query, row); err != nil {
		return fmt.Errorf("failed to upsert command %s: %w", name, err)
	}
	return nil
}

// ImportCommandBook writes every entry of book in one transaction.
func ImportCommandBook(db *sqlx.DB, book model.CommandBook) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().Unix()
	query := `INSERT INTO commands (name, body, updated_at) VALUES (:name, :body, :updated_at)
			  ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	for _, name := range book.Names() {
		body, err := json.Marshal(book[name])
		if err != nil {
			return fmt.Errorf("failed to encode command %s: %w", name, err)
		}
		row := CommandRow{Name: strings.ToLower(name), Body: string(body), UpdatedAt: now}
		if _, err := tx.NamedExec(query, row); err != nil {
			return fmt.Errorf("failed to import command %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// GetCommand loads a single entry by name.
func GetCommand(db *sqlx.DB, name string) (model.CommandEntry, error) {
	var row CommandRow
	err := db.Get(&row, "SELECT name, body, updated_at FROM commands WHERE name = ?", strings.ToLower(name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.CommandEntry{}, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	if err != nil {
		return model.CommandEntry{}, fmt.Errorf("failed to get command %s: %w", name, err)
	}
	var entry model.CommandEntry
	if err := json.Unmarshal([]byte(row.Body), &entry); err != nil {
		return model.CommandEntry{}, fmt.Errorf("failed to decode command %s: %w", name, err)
	}
	return entry, nil
}

// LoadCommandBook reads every stored command.
func LoadCommandBook(db *sqlx.DB) (model.CommandBook, error) {
	var rows []CommandRow
	if err := db.Select(&rows, "SELECT name, body, updated_at FROM commands ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	book := make(model.CommandBook, len(rows))
	for _, row := range rows {
		var entry model.CommandEntry
		if err := json.Unmarshal([]byte(row.Body), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode command %s: %w", row.Name, err)
		}
		book[row.Name] = entry
	}
	return book, nil
}

// DeleteCommand removes a command by name.
func DeleteCommand(db *sqlx.DB, name string) error {
	result, err := db.Exec("DELETE FROM commands WHERE name = ?", strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("failed to delete command %s: %w", name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for command %s: %w", name, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return nil
}
