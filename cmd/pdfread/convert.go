// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfread/internal/input"
	"github.com/pdiddy/pdfread/internal/manifest"
	"github.com/pdiddy/pdfread/internal/output"
	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/internal/pipeline"
	"github.com/pdiddy/pdfread/internal/profile"
	"github.com/pdiddy/pdfread/internal/tools"
	"github.com/pdiddy/pdfread/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a document into device-fitted page images and package them",
	Long: `Convert rasterizes every page of the input, runs the crop, dilate,
page-mode and enhance stages, and saves one PNG per output image in the
work directory. The images are then packaged in the profile's output
format (or --format) and moved to --output.

Settings come from the flags, then the config file or PDFREAD_*
environment variables, then the selected device profile. Use
--help-profiles to list the profiles.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

// settings is the resolved configuration of one convert run.
type settings struct {
	profile  types.DeviceProfile
	config   types.PipelineConfig
	meta     types.Metadata
	dpi      int
	count    int
	progress string
}

func runConvert(cmd *cobra.Command, args []string) error {
	table, err := profileTable()
	if err != nil {
		return err
	}
	if help, _ := cmd.Flags().GetBool("help-profiles"); help {
		table.WriteHelp(os.Stdout)
		return nil
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	inPath := args[0]

	s, err := resolveSettings(cmd, table)
	if err != nil {
		return err
	}

	log := slog.Default()
	caps := tools.Probe()
	log.Debug("external tools", "found", caps.Found())

	inFormat, _ := cmd.Flags().GetString("input-format")
	if inFormat == "" {
		inFormat = input.DetectFormat(inPath)
	}

	workDir, temp, err := prepareWorkDir(cmd)
	if err != nil {
		return err
	}
	log.Debug("work directory", "path", workDir, "temporary", temp)

	gscrop, _ := cmd.Flags().GetBool("gscrop")
	driver, doc, count, err := startRun(s, inFormat, inPath, workDir, gscrop, caps, log)
	if err != nil {
		if temp {
			os.RemoveAll(workDir)
		}
		return err
	}
	toc := doc.TOC()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := driver.Run(ctx, doc, count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Work directory kept: %s\n", workDir)
		return err
	}

	absIn, err := filepath.Abs(inPath)
	if err != nil {
		absIn = inPath
	}
	err = writeManifest(ctx, workDir, manifest.Manifest{
		Run: manifest.Run{
			Input:     absIn,
			Format:    s.profile.Format,
			Profile:   s.profile.Name,
			Meta:      s.meta,
			Config:    s.config,
			Pages:     res.Pages,
			Blank:     res.Blank,
			CreatedAt: time.Now().UTC(),
		},
		Index:  res.Index.Entries(),
		TOC:    toc,
		Images: res.Saved,
	})
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	moved, err := output.Generate(s.profile.Format, output.Book{
		Dir:    workDir,
		Images: res.Images,
		Meta:   s.meta,
		TOC:    output.RemapTOC(toc, res.Index),
		Output: outPath,
		Caps:   caps,
		Log:    log,
		Notice: os.Stdout,
	})
	if err != nil {
		return err
	}
	return finishWorkDir(workDir, temp, moved)
}

// startRun builds the pipeline driver and opens the input with its page
// count settled. The document is closed on error.
func startRun(s settings, format, path, workDir string, gscrop bool,
	caps *tools.Capabilities, log *slog.Logger) (*pipeline.Driver, input.Document, int, error) {
	reporter, err := pipeline.NewReporter(s.progress, os.Stdout)
	if err != nil {
		return nil, nil, 0, err
	}
	saver, err := persist.NewSaver(workDir, s.config, caps, log)
	if err != nil {
		return nil, nil, 0, err
	}
	driver, err := pipeline.New(s.config, saver, reporter, log)
	if err != nil {
		return nil, nil, 0, err
	}

	doc, err := input.Open(format, path, input.Options{
		DPI:     s.dpi,
		WorkDir: workDir,
		GSCrop:  gscrop,
		Caps:    caps,
		Log:     log,
	})
	if err != nil {
		return nil, nil, 0, err
	}
	count, err := input.ResolveCount(doc, s.count, input.LinePrompter{In: os.Stdin, Out: os.Stdout})
	if err != nil {
		doc.Close()
		return nil, nil, 0, err
	}
	return driver, doc, count, nil
}

// resolveSettings layers flags over config keys over the selected profile.
func resolveSettings(cmd *cobra.Command, table *profile.Table) (settings, error) {
	var s settings

	base, err := table.Lookup(stringSetting(cmd, "profile", "profile"))
	if err != nil {
		return s, err
	}
	o, err := profileOverrides(cmd)
	if err != nil {
		return s, err
	}
	s.profile, err = profile.Apply(base, o)
	if err != nil {
		return s, err
	}

	noCrop, _ := cmd.Flags().GetBool("no-crop")
	noDilate, _ := cmd.Flags().GetBool("no-dilate")
	optimize, _ := cmd.Flags().GetBool("optimize")

	s.config = types.NewPipelineConfig(s.profile)
	s.config.Crop = !noCrop
	s.config.CropPercent = floatSetting(cmd, "crop-percent", "crop_percent")
	s.config.Dilate = !noDilate
	s.config.EnhanceLevel = intSetting(cmd, "enhance", "enhance")
	s.config.Optimize = optimize
	if err := s.config.Validate(); err != nil {
		return s, err
	}

	s.meta.Title, _ = cmd.Flags().GetString("title")
	s.meta.Author, _ = cmd.Flags().GetString("author")
	s.meta.Category, _ = cmd.Flags().GetString("category")

	s.dpi = intSetting(cmd, "dpi", "dpi")
	if s.dpi <= 0 {
		return s, fmt.Errorf("dpi must be positive, got %d", s.dpi)
	}
	s.count, _ = cmd.Flags().GetInt("count")
	if s.count < 0 {
		return s, fmt.Errorf("count must not be negative, got %d", s.count)
	}
	s.progress = stringSetting(cmd, "progress", "progress")
	return s, nil
}

// profileOverrides collects the profile fields given explicitly on the
// command line.
func profileOverrides(cmd *cobra.Command) (profile.Overrides, error) {
	var o profile.Overrides
	f := cmd.Flags()

	o.HRes = changedInt(cmd, "hres")
	o.VRes = changedInt(cmd, "vres")
	if v := changedInt(cmd, "overlap"); v != nil {
		h, w := *v, *v
		o.OverlapH, o.OverlapV = &h, &w
	}
	if v := changedInt(cmd, "overlap-h"); v != nil {
		o.OverlapH = v
	}
	if v := changedInt(cmd, "overlap-v"); v != nil {
		o.OverlapV = v
	}
	o.Colors = changedInt(cmd, "colors")
	if mono, _ := f.GetBool("mono"); mono {
		two := 2
		o.Colors = &two
	}

	if f.Changed("mode") {
		s, _ := f.GetString("mode")
		m, err := types.ParsePageMode(s)
		if err != nil {
			return o, err
		}
		o.Mode = &m
	}
	if f.Changed("rotate") {
		s, _ := f.GetString("rotate")
		r, err := types.ParseRotation(s)
		if err != nil {
			return o, err
		}
		o.Rotation = &r
	}
	if f.Changed("format") {
		s, _ := f.GetString("format")
		o.Format = &s
	}
	o.NoSplit, _ = f.GetBool("nosplit")
	return o, nil
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// stringSetting returns the flag if it was given, then the config key,
// then the flag default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	v, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	v, _ := cmd.Flags().GetInt(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return v
}

func floatSetting(cmd *cobra.Command, flag, key string) float64 {
	v, _ := cmd.Flags().GetFloat64(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return v
}

// profileTable returns the built-in profiles extended by the config
// file's profiles map.
func profileTable() (*profile.Table, error) {
	table := profile.Builtin()
	if !viper.IsSet("profiles") {
		return table, nil
	}
	var custom map[string]types.DeviceProfile
	if err := viper.UnmarshalKey("profiles", &custom); err != nil {
		return nil, fmt.Errorf("reading profiles from config: %w", err)
	}
	if err := table.Merge(custom); err != nil {
		return nil, err
	}
	return table, nil
}

// prepareWorkDir returns the --workdir directory, creating it if needed,
// or a fresh temporary one. temp reports whether the directory may be
// removed once the artifact has been moved out.
func prepareWorkDir(cmd *cobra.Command) (dir string, temp bool, err error) {
	dir, _ = cmd.Flags().GetString("workdir")
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, fmt.Errorf("creating work directory: %w", err)
		}
		return dir, false, nil
	}
	root := viper.GetString("workdir_root")
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return "", false, fmt.Errorf("creating work directory root: %w", err)
		}
	}
	dir, err = os.MkdirTemp(root, "pdfread-")
	if err != nil {
		return "", false, fmt.Errorf("creating work directory: %w", err)
	}
	return dir, true, nil
}

// writeManifest records a finished run. Cancelling ctx does not abort the
// save.
func writeManifest(ctx context.Context, dir string, m manifest.Manifest) error {
	ctx = context.WithoutCancel(ctx)
	store, err := manifest.Create(dir)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, m); err != nil {
		store.Close()
		return fmt.Errorf("saving manifest: %w", err)
	}
	return store.Close()
}

// finishWorkDir removes a temporary work directory once the artifact has
// been moved out of it. Otherwise the directory is reported.
func finishWorkDir(dir string, temp, moved bool) error {
	if moved && temp {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing work directory: %w", err)
		}
		return nil
	}
	if !moved {
		fmt.Printf("\nOutput directory: %s\n", dir)
	}
	return nil
}

// convertFlags registers the convert flag set on cmd. The root command
// carries the same set so it can run convert directly.
func convertFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("profile", "p", "reb1100", "device profile (see --help-profiles)")
	f.StringP("output", "o", "", "path of the final e-book; the format extension is appended when missing")
	f.StringP("title", "t", "Unknown", "book title")
	f.StringP("author", "a", "Unknown", "book author")
	f.StringP("category", "c", "General", "book category")
	f.StringP("format", "f", "", "output format: html, rb, lrf, imp1, imp2, epub, pdf (default: the profile's)")
	f.StringP("input-format", "i", "", "input format: pdf, djvu, tiff, images (default: from the file extension)")
	f.StringP("workdir", "d", "", "keep intermediate files in this directory instead of a temporary one")
	f.Bool("optimize", false, "recompress every saved image with optipng")
	f.Int("dpi", 300, "rasterizing resolution")
	f.Bool("gscrop", false, "rasterize PDF pages with Ghostscript using the EPS bounding box")
	f.Int("colors", 0, "quantize saved images to this many gray levels (below 2 keeps full depth)")
	f.Bool("mono", false, "quantize to 2 colors")
	f.Bool("nosplit", false, "never split pages (forces portrait mode)")
	f.String("mode", "", "page mode: portrait, landscape, landscape-half, landscape-third, portrait-two-column")
	f.String("rotate", "", "rotation of split pages: none, left, right")
	f.Int("count", 0, "number of pages to process (default: from the document)")
	f.Int("hres", 0, "device horizontal resolution")
	f.Int("vres", 0, "device vertical resolution")
	f.Int("overlap", 0, "overlap in pixels between split pages, both axes")
	f.Int("overlap-h", 0, "horizontal overlap in pixels between split pages")
	f.Int("overlap-v", 0, "vertical overlap in pixels between split pages")
	f.Float64("crop-percent", types.DefaultCropPercent, "crop probe window as a percentage of the axis (0 selects the plain bounding-box crop)")
	f.Bool("no-crop", false, "disable whitespace cropping")
	f.Bool("no-dilate", false, "disable the dilation filter")
	f.Int("enhance", types.DefaultEnhanceLevel, "edge enhancement level 1-9 (0 disables)")
	f.String("progress", pipeline.ProgressText, "progress style: text, bar, none")
	f.Bool("help-profiles", false, "print the device profiles and exit")
}

func init() {
	convertFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
