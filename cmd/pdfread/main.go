// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfread CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfread CLI. Without a subcommand it
// behaves like convert.
var rootCmd = &cobra.Command{
	Use:   "pdfread [input]",
	Short: "Convert PDF, DjVu and scanned pages into images fitted to an e-reader",
	Long: `pdfread rasterizes every page of a document, crops the margins, thickens
and sharpens the text, splits or fits each page to the screen of a
device profile, and packages the images as an e-book.

Running pdfread with an input file and no subcommand is the same as
running "pdfread convert". Use "pdfread package" to package an existing
work directory into another format without re-rasterizing.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	RunE:          runConvert,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfread.yaml or ~/.config/pdfread/pdfread.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log tool probing and stage decisions to stderr")

	convertFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfread")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfread"))
		}
	}

	viper.SetEnvPrefix("PDFREAD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
