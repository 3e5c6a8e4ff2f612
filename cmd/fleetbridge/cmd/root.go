package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool
	noLog      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fleetbridge",
	Short: "Device fleet reconciliation CLI",
	Long: `Fleetbridge keeps the asset-management platform in agreement with the
fleet telemetry platform. It collects device, counter and supply snapshots,
resolves each device to its owning customer, builds the minimal set of
create and update instructions, and dispatches them at the pace the target
API tolerates.`,
	PersistentPreRunE: setupCommand,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "pipeline",
		Title: "Pipeline Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "curation",
		Title: "Curation Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&noLog, "no-log-file", false, "do not mirror logs to the operational log file")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for snapshots, caches and locks")
	rootCmd.PersistentFlags().String("out-dir", "", "directory for generated payloads and reports")

	if err := viper.BindPFlag(config.KeyDataDir, rootCmd.PersistentFlags().Lookup("data-dir")); err != nil {
		panic(fmt.Sprintf("Failed to bind data-dir flag: %v", err))
	}
	if err := viper.BindPFlag(config.KeyOutDir, rootCmd.PersistentFlags().Lookup("out-dir")); err != nil {
		panic(fmt.Sprintf("Failed to bind out-dir flag: %v", err))
	}
}

// initConfig reads .env files and environment variables.
func initConfig() {
	// Load .env files first (before Viper env binding); .env.local overrides .env
	envFiles := []string{".env", ".env.local"}
	if configFile != "" {
		envFiles = []string{configFile}
	}
	for _, envFile := range envFiles {
		_ = godotenv.Overload(envFile)
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindConfigKeys()
	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	if noLog {
		return nil
	}
	if _, err := logging.AttachFileSink(config.LogPath()); err != nil {
		// The run is still useful without the file sink.
		logging.Warn().Err(err).Str("path", config.LogPath()).Msg("Failed to open operational log")
	}
	return nil
}

// configureLogging sets the log level from flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)
}

// bindConfigKeys explicitly binds the configuration environment variables so
// Viper sees values that only exist in the process environment.
func bindConfigKeys() {
	keys := []string{
		config.KeySourceAPIURL,
		config.KeySourceAPIKey,
		config.KeyTargetAPIURL,
		config.KeyTargetAPIKey,
		config.KeyTargetAPIToken,
		config.KeyDataDir,
		config.KeyOutDir,
		config.KeySyncInterval,
	}
	for _, key := range keys {
		if err := viper.BindEnv(key); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", key, err)
		}
	}
}
