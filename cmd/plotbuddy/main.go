package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/plotbuddy/ai/observability/logging"
	"github.com/hrygo/plotbuddy/internal/profile"
	"github.com/hrygo/plotbuddy/internal/version"
)

var (
	rootCmd = &cobra.Command{
		Use:           "plotbuddy",
		Short:         `A storytelling companion. Chat, brainstorm, and generate short stories by genre, mood and length.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Try to load .env file from current directory (ignore error if file doesn't exist)
			_ = godotenv.Load()
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "memory")
	viper.SetDefault("user", "local")
	viper.SetDefault("format", "text")

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of the assistant, can be "prod" or "dev"`)
	flags.String("data", "", "data directory")
	flags.String("driver", "memory", "database driver (memory, sqlite, postgres)")
	flags.String("dsn", "", "database source name(aka. DSN)")
	flags.String("user", "local", "user id the conversation belongs to")
	flags.String("format", "text", "output format (text, markdown, html)")
	flags.String("llm-provider", "", "LLM provider (gemini, openai, deepseek, siliconflow, dashscope, openrouter, ollama)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("llm-base-url", "", "override the provider base URL")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	flags.String("rules", "", "routing rules file (YAML) replacing the built-in table")

	for _, name := range []string{
		"mode", "data", "driver", "dsn", "user", "format",
		"llm-provider", "llm-model", "llm-base-url", "metrics-addr", "rules",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("plotbuddy")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		newChatCmd(),
		newAskCmd(),
		newFAQCmd(),
		newStoryCmd(),
		newModeCmd("brainstorm", "Brainstorm story ideas with a creative approach"),
		newModeCmd("advice", "Get a writing tip"),
		newProfileCmd(),
		newStoriesCmd(),
		newVersionCmd(),
	)
}

// loadProfile reads flags and environment into a validated profile and
// installs the process logger for its mode.
func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:        viper.GetString("mode"),
		Data:        viper.GetString("data"),
		Driver:      viper.GetString("driver"),
		DSN:         viper.GetString("dsn"),
		LLMProvider: viper.GetString("llm-provider"),
		LLMModel:    viper.GetString("llm-model"),
		LLMBaseURL:  viper.GetString("llm-base-url"),
		MetricsAddr: viper.GetString("metrics-addr"),
		RulesFile:   viper.GetString("rules"),
		Format:      viper.GetString("format"),
		Version:     version.String(),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}

	// Logs go to stderr so they never interleave with replies on stdout.
	slog.SetDefault(slog.New(logging.NewHandler(instanceProfile.Mode, os.Stderr)))
	return instanceProfile, nil
}

func userID() string {
	if id := strings.TrimSpace(viper.GetString("user")); id != "" {
		return id
	}
	return "local"
}

// signalContext returns a context cancelled on the first termination signal.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), terminationSignals...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
