package cmd

import (
	"fmt"
	"os"

	"github.com/quickkv/quickkv/cmd/kv"
	"github.com/quickkv/quickkv/cmd/shell"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "quickkv",
		Short: "embedded durable key-value store",
		Long: fmt.Sprintf(`quickkv (v%s)

An embedded key-value store library written in Go, combining an
in-memory cache with an append-only disk log for durability.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of quickkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quickkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(shell.ShellCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
