package shell

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/quickkv/quickkv/cmd/util"
	"github.com/quickkv/quickkv/lib/kv"
	"github.com/spf13/cobra"
)

var (
	engine kv.Engine

	// ShellCmd starts an interactive session against the configured store
	ShellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Starts an interactive session against the store",
		Long: util.WrapString("Starts an interactive read-eval-print loop against the configured store. " +
			"Type 'help' inside the session for the list of commands."),
		Args:    cobra.NoArgs,
		PreRunE: setupEngine,
		RunE:    runShell,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)
	util.SetupEngineFlags(ShellCmd)
}

func setupEngine(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	engine, err = util.OpenEngine()
	return err
}

func runShell(_ *cobra.Command, _ []string) error {
	defer func() { _ = engine.Close() }()

	info := engine.Info()
	fmt.Printf("connected (runtime=%s", info.Runtime)
	if info.Path != "" {
		fmt.Printf(", path=%s", info.Path)
	}
	fmt.Println(")")
	fmt.Println("type 'help' for a list of commands, 'exit' to quit")

	scanner := bufio.NewScanner(os.Stdin)
	// allow values up to 1 MiB on a single line
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "exit" || cmd == "quit" {
			return nil
		}

		if err := eval(cmd, args); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

// eval executes a single shell command against the engine
func eval(cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()
		return nil

	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get <key>")
		}
		value, found, err := engine.Get(args[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("(not found)")
			return nil
		}
		fmt.Println(string(value))
		return nil

	case "set":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: set <key> <value> [ttl]")
		}
		ttl, err := parseTTLArg(args)
		if err != nil {
			return err
		}
		if err := engine.Set(args[0], []byte(args[1]), ttl); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil

	case "update":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: update <key> <value> [ttl]")
		}
		ttl, err := parseTTLArg(args)
		if err != nil {
			return err
		}
		if err := engine.Update(args[0], []byte(args[1]), ttl, false); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil

	case "del", "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: del <key>")
		}
		if err := engine.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil

	case "exists":
		if len(args) != 1 {
			return fmt.Errorf("usage: exists <key>")
		}
		found, err := engine.Exists(args[0])
		if err != nil {
			return err
		}
		fmt.Println(found)
		return nil

	case "keys":
		keys, err := engine.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil

	case "len":
		n, err := engine.Len()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	case "purge":
		if err := engine.Purge(); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil

	case "info":
		info := engine.Info()
		fmt.Printf("runtime=%s\n", info.Runtime)
		if info.Path != "" {
			fmt.Printf("path=%s\n", info.Path)
		}
		fmt.Printf("entries=%d\nhits=%d\nmisses=%d\nexpired=%d\n",
			info.Entries, info.Hits, info.Misses, info.Expired)
		return nil

	case "metrics":
		metrics.WritePrometheus(os.Stdout, false)
		return nil

	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
}

func parseTTLArg(args []string) (ttl time.Duration, err error) {
	if len(args) == 3 {
		ttl, err = util.ParseTTL(args[2])
		if err != nil {
			return 0, fmt.Errorf("ttl must be a duration: %w", err)
		}
	}
	return ttl, nil
}

func printHelp() {
	fmt.Print(`commands:
  get <key>                 read the value for a key
  set <key> <value> [ttl]   store a value (ttl e.g. 30s, 5m)
  update <key> <value> [ttl] replace the value of an existing key
  del <key>                 delete a key
  exists <key>              check whether a key exists
  keys                      list all live keys
  len                       count live entries
  purge                     remove all entries
  info                      show store statistics
  metrics                   dump operation metrics (prometheus format)
  exit                      quit the session
`)
}
