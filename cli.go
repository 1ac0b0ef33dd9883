package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"rpg-bot/bot"
	"rpg-bot/commands"
	"rpg-bot/config"
	"rpg-bot/handlers"
	"rpg-bot/model"
	"rpg-bot/utils"
)

// setup loads the configuration and builds the logger shared by every
// subcommand. The returned func flushes the logger.
func setup(requireToken bool) (*model.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(config.Options{
		EnvFile:      envFile,
		ConfigFile:   configFile,
		RequireToken: requireToken,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	log, closeLog, err := utils.NewLogger(cfg.LogLevel, cfg.LogWebhookURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, closeLog, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(true)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := commands.New(cfg, log)
			if err != nil {
				return fmt.Errorf("open command store: %w", err)
			}
			if _, err := commands.Load(cmd.Context(), store); err != nil {
				log.Warn("command book has problems", zap.Error(err))
			}

			b, err := bot.New(cfg, store, log)
			if err != nil {
				store.Close()
				return fmt.Errorf("create bot: %w", err)
			}
			defer b.Close()
			handlers.Register(b)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return b.Run(ctx)
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the command book as slash commands and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(true)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := commands.New(cfg, log)
			if err != nil {
				return fmt.Errorf("open command store: %w", err)
			}
			defer store.Close()

			b, err := bot.New(cfg, store, log)
			if err != nil {
				return fmt.Errorf("create bot: %w", err)
			}
			if err := b.RefreshCommands(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %d commands\n", len(b.RegisteredCommands))
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Copy a JSON or YAML command book into the COMMANDS_DB database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(false)
			if err != nil {
				return err
			}
			defer closeLog()
			if cfg.CommandsDB == "" {
				return errors.New("COMMANDS_DB is not set")
			}

			src, err := commands.NewFileStore(args[0], log)
			if err != nil {
				return err
			}
			book, err := commands.Load(context.Background(), src)
			if err != nil {
				return err
			}

			db, err := commands.OpenSQLiteStore(cfg.CommandsDB, log)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Import(book); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d commands into %s\n", len(book), cfg.CommandsDB)
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configured command book and report invalid entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(false)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := commands.New(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			book, err := commands.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			if _, err := commands.GenerateCommands(book); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d commands ok\n", len(book))
			return nil
		},
	}
}

// openCommandsDB opens the COMMANDS_DB database for the command subcommands.
func openCommandsDB() (*commands.SQLiteStore, func(), error) {
	cfg, log, closeLog, err := setup(false)
	if err != nil {
		return nil, nil, err
	}
	if cfg.CommandsDB == "" {
		closeLog()
		return nil, nil, errors.New("COMMANDS_DB is not set")
	}
	db, err := commands.OpenSQLiteStore(cfg.CommandsDB, log)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return db, func() {
		db.Close()
		closeLog()
	}, nil
}

// readCommandEntry decodes one command from a JSON or YAML file. A plain
// string is a simple command.
func readCommandEntry(path string) (model.CommandEntry, error) {
	var entry model.CommandEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entry)
	default:
		err = json.Unmarshal(data, &entry)
	}
	if err != nil {
		return entry, fmt.Errorf("parse %s: %w", path, err)
	}
	return entry, nil
}

func newCommandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Inspect and edit single commands in the COMMANDS_DB database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a command as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, done, err := openCommandsDB()
			if err != nil {
				return err
			}
			defer done()

			entry, err := db.Get(strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "put <name> <file>",
		Short: "Create or replace a command from a JSON or YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := readCommandEntry(args[1])
			if err != nil {
				return err
			}
			db, done, err := openCommandsDB()
			if err != nil {
				return err
			}
			defer done()

			name := strings.ToLower(args[0])
			if err := db.Put(name, entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, done, err := openCommandsDB()
			if err != nil {
				return err
			}
			defer done()

			name := strings.ToLower(args[0])
			if err := db.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
			return nil
		},
	})
	return cmd
}
