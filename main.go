package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/jsonprof/jsonprof/internal/config"
	"github.com/jsonprof/jsonprof/internal/corpus"
	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/index"
	"github.com/jsonprof/jsonprof/internal/merger"
	"github.com/jsonprof/jsonprof/internal/metadata"
	"github.com/jsonprof/jsonprof/internal/report"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to a jsonprof config file." short:"c" type:"path"`
	Root    string           `help:"Repository root containing the corpus folders." default:"."`
	Reports string           `help:"Directory reports are written to and read back from." default:"reports"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Index    IndexCmd    `cmd:"" help:"Index the JSON files of a folder: sizes, validity, top-level keys, previews."`
	Schema   SchemaCmd   `cmd:"" help:"Build per-corpus schema reports: paths, observed types, conflicts, unique paths."`
	Metadata MetadataCmd `cmd:"" help:"Report model names and token usage from metadata and response files."`
	Table    TableCmd    `cmd:"" help:"Render the per-folder metadata summary table as CSV and Markdown."`
	Unique   UniqueCmd   `cmd:"" help:"Extract paths present in only one file per corpus from schema reports."`
	Compare  CompareCmd  `cmd:"" help:"Compare modeler vs parser token usage per process."`
}

// Version information
const (
	Version = "0.1.0"
)

// Context holds the runtime context shared by all subcommands
type Context struct {
	Debug  bool
	Config *config.Config
}

// logf prints a progress line to stderr; report data only ever goes to files.
func (c *Context) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (c *Context) debugf(format string, args ...any) {
	if c.Debug {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("jsonprof"),
		kong.Description("Profile and cross-compare corpora of experiment JSON documents"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("jsonprof version %s", Version)},
	)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
	if CLI.Debug {
		cfg.Dev.Debug = true
	}

	err = ctx.Run(&Context{Debug: cfg.Dev.Debug, Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonprof --help\n")
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: explicit --config path,
// else a discovered config file, else defaults; --root/--reports override
// the file when set to something other than their flag defaults.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg := config.NewConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, errors.NewInputError(fmt.Sprintf("failed to load config '%s'", path), err)
		}
		cfg = loaded
	}

	if CLI.Root != "." {
		cfg.Root = CLI.Root
	}
	if CLI.Reports != "reports" {
		cfg.Reports = CLI.Reports
	}
	return cfg, nil
}

// IndexCmd indexes one folder's JSON files for later manual analysis.
type IndexCmd struct {
	Folder  string `arg:"" help:"Folder to index." type:"path"`
	Preview int    `help:"Preview length in characters (0 uses the configured default)."`
	Out     string `help:"Output file (defaults to <reports>/<folder>_index.json)." type:"path"`
}

func (c *IndexCmd) Run(ctx *Context) error {
	previewLen := c.Preview
	if previewLen <= 0 {
		previewLen = ctx.Config.Analysis.PreviewLength
	}

	idx, err := index.Build(c.Folder, previewLen)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = filepath.Join(ctx.Config.Reports, filepath.Base(idx.Root)+"_index.json")
	}
	if err := report.WriteJSON(out, idx); err != nil {
		return err
	}
	ctx.logf("Wrote index of %d files to %s", idx.FilesCount, out)
	return nil
}

// SchemaCmd builds the per-corpus merged schema reports.
type SchemaCmd struct {
	Folders []string `arg:"" optional:"" help:"Corpus folders to analyze (defaults to the configured folders)."`
	Ignore  []string `help:"Filename patterns to ignore (defaults to the configured patterns)."`
	Sample  int      `help:"Array elements sampled per array (0 uses the configured default, negative walks all)."`
}

func (c *SchemaCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	folders := c.Folders
	if len(folders) == 0 {
		folders = cfg.Folders
	}
	ignore := c.Ignore
	if len(ignore) == 0 {
		ignore = cfg.IgnorePatterns
	}
	sample := c.Sample
	if sample == 0 {
		sample = cfg.Analysis.ArraySample
	}

	for _, folder := range folders {
		if err := c.processFolder(ctx, folder, ignore, sample); err != nil {
			return err
		}
	}
	ctx.logf("All done")
	return nil
}

func (c *SchemaCmd) processFolder(ctx *Context, folder string, ignore []string, sample int) error {
	cfg := ctx.Config
	indexPath := filepath.Join(cfg.Reports, folder+"_index.json")
	idx := corpus.LoadIndexIfExists(indexPath)
	if idx != nil {
		ctx.debugf("using index %s for folder %s", indexPath, folder)
	}

	files, err := corpus.FindJSONFiles(filepath.Join(cfg.Root, folder), idx, ignore)
	if err != nil {
		return err
	}
	ctx.logf("Found %d JSON files under %s (after applying ignore patterns)", len(files), folder)
	if len(files) == 0 {
		return errors.NewScanError(
			fmt.Sprintf("no JSON files found for corpus '%s'", folder),
			errors.ErrNoFiles,
		)
	}

	schemas := corpus.AnalyzeFiles(files, sample, cfg.Analysis.Workers)
	merged := merger.Merge(schemas)
	rep := report.BuildSchemaReport(folder, schemas, merged)

	jsonPath, mdPath, err := report.WriteSchemaReport(cfg.Reports, rep)
	if err != nil {
		return err
	}
	ctx.logf("Wrote schema report %s and summary %s", jsonPath, mdPath)
	return nil
}

// MetadataCmd scans metadata/response files and aggregates usage per folder.
type MetadataCmd struct {
	Folders []string `arg:"" optional:"" help:"Restrict to files under these folder names."`
	Out     string   `help:"Output directory (defaults to the reports directory)." type:"path"`
}

func (c *MetadataCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	files, err := metadata.FindFiles(cfg.Root)
	if err != nil {
		return err
	}
	files = metadata.FilterByFolders(files, c.Folders)
	ctx.logf("Found %d metadata/response files to analyze", len(files))
	if len(files) == 0 {
		return errors.NewScanError("no metadata files found", errors.ErrNoFiles)
	}

	records := metadata.AnalyzeFiles(files)
	byFolder := metadata.AggregateByFolder(records)

	out := c.Out
	if out == "" {
		out = cfg.Reports
	}
	if err := report.WriteMetadataOutputs(out, records, byFolder); err != nil {
		return err
	}
	ctx.logf("Wrote metadata CSV and summary JSON to %s", out)
	return nil
}

// TableCmd renders the metadata summary table from a prior metadata run.
type TableCmd struct {
	Metric string `help:"Metric used for the min/max columns." default:"total_tokens" enum:"total_tokens,prompt_tokens,completion_tokens"`
	Out    string `help:"Output directory (defaults to the reports directory)." type:"path"`
}

func (c *TableCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	summary, err := report.ReadSummary(filepath.Join(cfg.Reports, "metadata_summary.json"))
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = cfg.Reports
	}
	rows := report.SummaryRows(summary, c.Metric)
	csvPath, mdPath, err := report.WriteSummaryTable(out, c.Metric, rows)
	if err != nil {
		return err
	}
	ctx.logf("Wrote %s and %s", csvPath, mdPath)
	return nil
}

// UniqueCmd extracts per-corpus unique paths from existing schema reports.
type UniqueCmd struct {
	Folders  []string `arg:"" optional:"" help:"Restrict to these corpus folders."`
	Snippets bool     `help:"Include a short snippet from the containing file when possible."`
	Out      string   `help:"Output directory (defaults to the reports directory)." type:"path"`
}

func (c *UniqueCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	reportFiles, err := report.FindSchemaReports(cfg.Reports, c.Folders)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = cfg.Reports
	}
	for _, rp := range reportFiles {
		rep, err := report.ReadSchemaReport(rp)
		if err != nil {
			return err
		}
		unique := report.BuildUniquePaths(rep, c.Snippets, cfg.Analysis.SnippetContext)
		jsonPath, csvPath, err := report.WriteUniquePaths(out, unique)
		if err != nil {
			return err
		}
		ctx.logf("Wrote %s (%d entries) and %s", jsonPath, len(unique.UniquePaths), csvPath)
	}
	ctx.logf("All done")
	return nil
}

// CompareCmd compares modeler vs parser token usage per process.
type CompareCmd struct {
	Out string `help:"Output directory (defaults to the reports directory)." type:"path"`
}

func (c *CompareCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	records, err := report.ReadDetailsCSV(filepath.Join(cfg.Reports, "metadata_details.csv"))
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = cfg.Reports
	}
	cmp := report.BuildProcessComparison(records)
	csvPath, mdPath, err := report.WriteProcessComparison(out, cmp)
	if err != nil {
		return err
	}
	ctx.logf("Wrote %s and %s", csvPath, mdPath)
	return nil
}
