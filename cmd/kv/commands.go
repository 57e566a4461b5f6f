package kv

import (
	"fmt"
	"os"

	"github.com/VictoriaMetrics/metrics"
	"github.com/quickkv/quickkv/cmd/util"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value] [ttl]",
		Short: "Sets the value for a key, optionally with a time-to-live",
		Long:  util.WrapString("Sets the value for a key. The optional ttl argument is a Go duration (e.g. 30s, 5m); 0 or omitted means the entry never expires (unless a default TTL is configured)."),
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			ttlArg := ""
			if len(args) == 3 {
				ttlArg = args[2]
			}
			ttl, err := util.ParseTTL(ttlArg)
			if err != nil {
				return fmt.Errorf("ttl must be a duration: %w", err)
			}
			if err := engine.Set(key, []byte(value), ttl); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := engine.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			}
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [key] [value] [ttl]",
		Short: "Updates the value for an existing key",
		Long:  util.WrapString("Updates the value for an existing key. If the key is absent the command is a no-op unless --upsert is set, in which case it behaves like set."),
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			ttlArg := ""
			if len(args) == 3 {
				ttlArg = args[2]
			}
			ttl, err := util.ParseTTL(ttlArg)
			if err != nil {
				return fmt.Errorf("ttl must be a duration: %w", err)
			}
			upsert, _ := cmd.Flags().GetBool("upsert")
			if err := engine.Update(key, []byte(value), ttl, upsert); err != nil {
				return err
			}
			fmt.Println("update successfully")
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := engine.Delete(key); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := engine.Exists(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists the keys of all live entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := engine.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len",
		Short: "Prints the number of live entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := engine.Len()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Removes all entries from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.Purge(); err != nil {
				return err
			}
			fmt.Println("purge successfully")
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Dumps operation metrics in Prometheus text format",
		Long: util.WrapString("Dumps the operation counters and duration summaries recorded by this " +
			"process in Prometheus text format. Metrics are process-local, so the dump reflects the " +
			"operations of the current invocation (for cumulative store statistics see 'kv info')."),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// touch the store so the gauges below reflect the live state
			n, err := engine.Len()
			if err != nil {
				return err
			}
			fmt.Printf("# entries: %d\n", n)
			metrics.WritePrometheus(os.Stdout, false)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints runtime information about the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := engine.Info()
			fmt.Printf("runtime=%s\n", info.Runtime)
			if info.Path != "" {
				fmt.Printf("path=%s\n", info.Path)
			}
			fmt.Printf("entries=%d\n", info.Entries)
			fmt.Printf("hits=%d\nmisses=%d\nexpired=%d\n", info.Hits, info.Misses, info.Expired)
			return nil
		},
	}
)

func init() {
	updateCmd.Flags().Bool("upsert", false, util.WrapString("Insert the key if it does not exist instead of doing nothing"))
}
