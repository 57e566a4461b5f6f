package kv

import (
	"github.com/quickkv/quickkv/cmd/util"
	"github.com/quickkv/quickkv/lib/kv"
	"github.com/spf13/cobra"
)

var (
	engine kv.Engine

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations",
		PersistentPreRunE:  setupEngine,
		PersistentPostRunE: teardownEngine,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common engine flags to the KV command
	util.SetupEngineFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(updateCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(existsCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(lenCmd)
	KeyValueCommands.AddCommand(purgeCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(statsCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupEngine opens the engine for the configured path and runtime
func setupEngine(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	engine, err = util.OpenEngine()
	return err
}

// teardownEngine closes the engine once the subcommand is done
func teardownEngine(_ *cobra.Command, _ []string) error {
	if engine == nil {
		return nil
	}
	return engine.Close()
}
