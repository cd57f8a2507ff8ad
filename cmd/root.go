package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veda-labs/mantramatch/logging"
)

var (
	configFile   string
	verbose      bool
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mantramatch",
	Short: "Recitation similarity scoring via MFCC fingerprints and DTW",
	Long: `mantramatch compares two recordings of spoken or chanted audio and
decides whether they represent the same utterance despite differences in
speaking rate, pacing pauses, or start/end alignment.

Each recording is sliced into frames, every frame is reduced to a compact
MFCC vector, and the two vector sequences are aligned with Dynamic Time
Warping under a cosine-distance cost. The result is a similarity score in
approximately [0, 1] and a match verdict against a configurable threshold.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose || viper.GetBool("verbose") {
			logging.SetLevel(logging.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/mantramatch/mantramatch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"output format (text, json)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mantramatch"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("mantramatch")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MANTRAMATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is worth surfacing
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			fmt.Fprintf(os.Stderr, "error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
