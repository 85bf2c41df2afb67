package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/memodraft/internal/logging"
	"github.com/ppiankov/memodraft/internal/model"
)

// version is overridden at build time with -ldflags
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool

	// Resolved in PersistentPreRunE for every subcommand
	cfg    *model.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "memodraft",
	Short: "memodraft - evidence-grounded business memo drafting",
	Long: `memodraft drafts business-memo emails from facts retrieved out of a
corpus of past cases, lets a reviewer approve or request edits, and learns
stylistic preferences from accumulated feedback.

Requests for missing information trigger a fresh retrieval; requests about
tone or length are remembered and applied to future drafts.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of memodraft.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("memodraft %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.memodraft/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().String("corpus", "", "evidence corpus CSV path")
	rootCmd.PersistentFlags().String("store", "", "persistence backend (sqlite, csv)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("corpus.path", rootCmd.PersistentFlags().Lookup("corpus"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.memodraft")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match MEMODRAFT_*, e.g. MEMODRAFT_LLM_PROVIDER
	viper.SetEnvPrefix("MEMODRAFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setup resolves configuration and builds the logger before any subcommand
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Log.Level
	if verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	l, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l

	if path := viper.ConfigFileUsed(); path != "" {
		logger.Debug("Loaded configuration", zap.String("file", path))
	}
	return nil
}

// loadConfig overlays everything viper knows onto the defaults and validates
func loadConfig(v *viper.Viper) (*model.Config, error) {
	c := model.DefaultConfig()
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// registerDefaults registers every default key so AutomaticEnv can resolve
// it during Unmarshal
func registerDefaults(v *viper.Viper, defaults *model.Config) error {
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	setDefaults(v, "", tree)

	// omitempty keys never reach the tree
	v.SetDefault("llm.api_key", defaults.LLM.APIKey)
	v.SetDefault("llm.base_url", defaults.LLM.BaseURL)
	v.SetDefault("llm.http_proxy", defaults.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", defaults.LLM.HTTPSProxy)
	v.SetDefault("llm.no_proxy", defaults.LLM.NoProxy)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			setDefaults(v, full, nested)
			continue
		}
		v.SetDefault(full, value)
	}
}
