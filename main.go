package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile    string
	configFile string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rpg-bot",
		Short:         "Discord bot that runs RPG commands defined in a command book",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "optional YAML config file")

	root.AddCommand(
		newRunCmd(),
		newRegisterCmd(),
		newImportCmd(),
		newCommandCmd(),
		newValidateCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
