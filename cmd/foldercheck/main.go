package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/RishiKendai/foldercheck/internal/logger"
	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/RishiKendai/foldercheck/internal/plagiarism"
	"github.com/RishiKendai/foldercheck/internal/project"
	"github.com/RishiKendai/foldercheck/internal/rabinkarp"
	"github.com/RishiKendai/foldercheck/internal/render"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "foldercheck: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	defaults := plagiarism.DefaultOptions()
	fs := flag.NewFlagSet("foldercheck", flag.ContinueOnError)

	dir := fs.String("dir", "", "Directory holding one subdirectory per submission")
	find := fs.String("find", "", "Report every file under -dir containing this exact fragment instead of comparing")
	showFiles := fs.Bool("files", false, "List file-level comparisons under each match")
	markdown := fs.Bool("markdown", false, "Render the report as markdown")
	style := fs.String("style", "dark", "Markdown style: dark, light, notty")
	width := fs.Int("width", 100, "Markdown word wrap width")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	minPct := fs.Float64("min", 0, "Hide matches below this percentage")
	top := fs.Int("top", 5, "Show at most N matches per folder (0 for all)")
	workers := fs.Int("workers", 0, "Comparison workers (0 sizes from CPU count)")
	logLevel := fs.String("log-level", "warn", "Log level")

	minChars := fs.Int("min-chars", defaults.MinCharLength, "Minimum characters for a file to be compared")
	minLines := fs.Int("min-lines", defaults.MinLineCount, "Minimum lines for a file to be compared")
	maxRatio := fs.Float64("max-ratio", defaults.MaxLengthRatio, "Maximum length ratio between compared files")
	mossK := fs.Int("moss-k", defaults.MossK, "Token k-gram size")
	mossWindow := fs.Int("moss-window", defaults.MossWindow, "Winnowing window")
	byteK := fs.Int("byte-k", defaults.ByteK, "Byte k-gram size")
	mossWeight := fs.Float64("moss-weight", defaults.MossWeight, "Weight of the token score")
	byteWeight := fs.Float64("byte-weight", defaults.ByteWeight, "Weight of the byte score")
	highConfidence := fs.Float64("high-confidence", defaults.HighConfidence, "Combined score above which a matched file is not reused")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		fs.Usage()
		return errors.New("-dir is required")
	}

	logger.Init(*logLevel, "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *find != "" {
		return findFragment(ctx, stdout, *dir, *find)
	}

	opts := plagiarism.Options{
		MinCharLength:  *minChars,
		MinLineCount:   *minLines,
		MaxLengthRatio: *maxRatio,
		MossK:          *mossK,
		MossWindow:     *mossWindow,
		ByteK:          *byteK,
		MossWeight:     *mossWeight,
		ByteWeight:     *byteWeight,
		HighConfidence: *highConfidence,
	}

	pool := plagiarism.NewWorkerPool(ctx, *workers)
	defer pool.Close()

	name := filepath.Base(filepath.Clean(*dir))
	report, err := plagiarism.ComputePlagiarism(ctx, models.CheckRequest{ProjectID: name, PromotionID: "local"},
		uuid.NewString(), *dir, plagiarism.Deps{
			Pool:         pool,
			Options:      opts,
			IncludeFiles: *showFiles,
		})
	if err != nil {
		return err
	}

	renderOpts := render.Options{MinPercentage: *minPct, TopMatches: *top, ShowFiles: *showFiles}
	switch {
	case *asJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case *markdown:
		return render.RenderMarkdown(stdout, report, renderOpts, *style, *width)
	default:
		return render.Text(stdout, report, renderOpts, render.DefaultTheme)
	}
}

// findFragment prints folder/path:offset for every occurrence of fragment in the normalized
// files of each submission.
func findFragment(ctx context.Context, w io.Writer, dir, fragment string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	hits := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := project.ProcessProjectFolder(ctx, filepath.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			log.Warn().Err(err).Str("folder", entry.Name()).Msg("Failed to normalize submission, skipping")
			continue
		}
		for _, rel := range p.SortedPaths() {
			offsets := rabinkarp.SearchString(p.Files[rel].Content, fragment)
			if len(offsets) == 0 {
				continue
			}
			hits += len(offsets)
			positions := make([]string, len(offsets))
			for i, off := range offsets {
				positions[i] = fmt.Sprint(off)
			}
			fmt.Fprintf(w, "%s/%s: %s\n", p.ProjectID, rel, strings.Join(positions, ","))
		}
	}

	fmt.Fprintf(w, "%d occurrences\n", hits)
	return nil
}
