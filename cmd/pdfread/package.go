// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfread/internal/manifest"
	"github.com/pdiddy/pdfread/internal/output"
	"github.com/pdiddy/pdfread/internal/tools"
)

var packageCmd = &cobra.Command{
	Use:   "package <workdir>",
	Short: "Package the images of an existing work directory",
	Long: `Package reads the run manifest (manifest.db) left in a work directory by
convert and runs only the output writer, so the same images can be
packaged in another format without rasterizing the document again.

Use --dump to print the manifest as YAML instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runPackage,
}

func runPackage(cmd *cobra.Command, args []string) error {
	dir := args[0]

	store, err := manifest.Open(dir)
	if err != nil {
		return err
	}
	m, err := store.Load(context.Background())
	store.Close()
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		return m.WriteYAML(os.Stdout)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = m.Run.Format
	}
	meta := m.Run.Meta
	if v, _ := cmd.Flags().GetString("title"); v != "" {
		meta.Title = v
	}
	if v, _ := cmd.Flags().GetString("author"); v != "" {
		meta.Author = v
	}
	if v, _ := cmd.Flags().GetString("category"); v != "" {
		meta.Category = v
	}
	outPath, _ := cmd.Flags().GetString("output")

	moved, err := output.Generate(format, output.Book{
		Dir:    dir,
		Images: len(m.Images),
		Meta:   meta,
		TOC:    output.RemapTOC(m.TOC, m.IndexMap()),
		Output: outPath,
		Caps:   tools.Probe(),
		Log:    slog.Default(),
		Notice: os.Stdout,
	})
	if err != nil {
		return err
	}
	if !moved {
		fmt.Printf("\nOutput directory: %s\n", dir)
	}
	return nil
}

func packageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("format", "f", "", "output format (default: the format of the recorded run)")
	f.StringP("output", "o", "", "path of the final e-book")
	f.StringP("title", "t", "", "replace the recorded title")
	f.StringP("author", "a", "", "replace the recorded author")
	f.StringP("category", "c", "", "replace the recorded category")
	f.Bool("dump", false, "print the manifest as YAML and exit")
}

func init() {
	packageFlags(packageCmd)
	rootCmd.AddCommand(packageCmd)
}
