// internal/cli/root.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shedtool/shed"
	"github.com/shedtool/shed/internal/config"
	"github.com/shedtool/shed/internal/log"
	"github.com/shedtool/shed/pkg/manifest"
)

var (
	cfgFile     string
	channelFlag string
	debug       bool
	cfg         *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shed",
	Short: "Reproducible development shells",
	Long: `shed - reproducible development shells

Evaluates a declarative shell manifest (shell.yaml or shell.json) against a
package set, realizes the packages into a local store, and derives the shell
environment: library search paths, pkg-config paths, plugin paths, and any
variables the manifest computes from resolved package roots.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shed/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "", "default channel when the manifest names none")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(realizeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.Default()
	}

	// Override config with flags
	if channelFlag != "" {
		cfg.Channel = channelFlag
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log.Configure(log.Config{Level: level})
}

// newEvaluator builds an evaluator from the effective configuration.
func newEvaluator() (*shed.Evaluator, error) {
	return shed.NewEvaluator(shed.Options{
		StoreRoot:  cfg.StoreRoot,
		CacheDir:   cfg.CacheDir,
		CacheURL:   cfg.CacheURL,
		ChannelURL: cfg.ChannelURL,
		Channel:    cfg.Channel,
		Logger:     log.WithComponent("evaluator"),
	})
}

// loadManifest locates and parses the manifest for the working directory.
func loadManifest() (*manifest.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, err := manifest.Find(cwd)
	if err != nil {
		return nil, err
	}
	return manifest.Load(path)
}
