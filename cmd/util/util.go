package util

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/quickkv/quickkv/lib/kv"
	"github.com/quickkv/quickkv/lib/kv/engines/quick"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupEngineFlags adds the common engine configuration flags to a command
func SetupEngineFlags(cmd *cobra.Command) {
	key := "path"
	cmd.PersistentFlags().String(key, "db.qkv", WrapString("Path of the backing database file. Paths without an extension get .qkv appended, directories get db.qkv appended"))

	key = "runtime"
	cmd.PersistentFlags().String(key, "disk", WrapString("Engine runtime: disk (durable, log-backed) or memory (volatile, no file I/O)"))

	key = "default-ttl"
	cmd.PersistentFlags().Duration(key, 0, WrapString("Default time-to-live applied to writes without an explicit TTL (0 = entries never expire)"))

	key = "log"
	cmd.PersistentFlags().Bool(key, false, WrapString("Enable engine logging to stdout"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Engine log level (debug, info, warning, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("qkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetEngineConfig reads the engine configuration from viper
func GetEngineConfig() quick.Config {
	runtime := kv.RuntimeDisk
	if strings.EqualFold(viper.GetString("runtime"), string(kv.RuntimeMemory)) {
		runtime = kv.RuntimeMemory
	}

	return quick.Config{
		Path:       viper.GetString("path"),
		Runtime:    runtime,
		DefaultTTL: viper.GetDuration("default-ttl"),
		Logging: quick.LogConfig{
			Enabled: viper.GetBool("log"),
			Level:   viper.GetString("log-level"),
		},
	}
}

// OpenEngine creates an engine from the current viper configuration
func OpenEngine() (kv.Engine, error) {
	return quick.New(GetEngineConfig())
}

// ParseTTL parses an optional TTL argument ("" and "0" mean no TTL)
func ParseTTL(arg string) (time.Duration, error) {
	if arg == "" || arg == "0" {
		return 0, nil
	}
	return time.ParseDuration(arg)
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
