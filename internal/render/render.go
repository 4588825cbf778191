// Package render prints check reports for terminals, either as styled text or as
// markdown rendered with glamour.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme defines the color scheme for console output
type Theme struct {
	Title   lipgloss.Style
	Folder  lipgloss.Style
	High    lipgloss.Style
	Medium  lipgloss.Style
	Low     lipgloss.Style
	Flag    lipgloss.Style
	Dim     lipgloss.Style
	Summary lipgloss.Style
}

// DefaultTheme is the default color scheme
var DefaultTheme = Theme{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Folder:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	High:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	Medium:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	Low:     lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	Flag:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Summary: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
}

// Options controls how much of a report is printed.
type Options struct {
	// MinPercentage hides matches below this overall percentage.
	MinPercentage float64
	// TopMatches caps the matches listed per folder; zero lists all.
	TopMatches int
	// ShowFiles lists file comparisons under each match.
	ShowFiles bool
}

// Text writes a styled summary: an overview table followed by the strongest matches per folder.
func Text(w io.Writer, report *models.CheckReport, opts Options, theme Theme) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", theme.Title.Render("Plagiarism report"))
	fmt.Fprintf(&b, "%s\n\n", theme.Dim.Render(fmt.Sprintf("check %s  project %s  promotion %s",
		report.CheckID, report.ProjectID, report.PromotionID)))

	folders := byPercentage(report.FolderResults)

	rows := make([][]string, 0, len(folders))
	for _, f := range folders {
		top := "-"
		if m := topMatch(f); m != nil {
			top = m.MatchedFolder
		}
		rows = append(rows, []string{f.FolderName, formatPercent(f.PlagiarismPercentage), top, shortHash(f.SHA1)})
	}
	overview := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.Dim).
		Headers("FOLDER", "SCORE", "TOP MATCH", "SHA1").
		Rows(rows...)
	fmt.Fprintf(&b, "%s\n", overview.String())

	for _, f := range folders {
		matches := visibleMatches(f, opts)
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s %s\n", theme.Folder.Render(f.FolderName), percentStyle(theme, f.PlagiarismPercentage).Render(formatPercent(f.PlagiarismPercentage)))
		for _, m := range matches {
			fmt.Fprintf(&b, "  %s %s %s",
				percentStyle(theme, m.OverallMatchPercentage).Render(fmt.Sprintf("%6s", formatPercent(m.OverallMatchPercentage))),
				theme.Folder.Render(m.MatchedFolder),
				theme.Dim.Render(fmt.Sprintf("(moss %s, bytes %s)", formatPercent(m.MossScore), formatPercent(m.RabinKarpScore))))
			if len(m.Flags) > 0 {
				fmt.Fprintf(&b, " %s", theme.Flag.Render(strings.Join(m.Flags, ",")))
			}
			b.WriteString("\n")

			if opts.ShowFiles {
				for _, fc := range m.FileComparisons {
					fmt.Fprintf(&b, "      %s %s %s\n",
						theme.Dim.Render(fmt.Sprintf("%6s", formatPercent(fc.CombinedScore))),
						fc.File1Path,
						theme.Dim.Render("<-> "+fc.File2Path))
				}
			}
		}
	}

	fmt.Fprintf(&b, "\n%s folders, %s pairs compared",
		theme.Summary.Render(fmt.Sprintf("%d", len(report.FolderResults))),
		theme.Summary.Render(fmt.Sprintf("%d", report.PairsCompared)))
	if len(report.SkippedFolders) > 0 {
		fmt.Fprintf(&b, ", %s skipped: %s",
			theme.High.Render(fmt.Sprintf("%d", len(report.SkippedFolders))),
			strings.Join(report.SkippedFolders, ", "))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown formats a report as a markdown document.
func Markdown(report *models.CheckReport, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Plagiarism report\n\n")
	fmt.Fprintf(&b, "- **Check:** `%s`\n- **Project:** %s\n- **Promotion:** %s\n- **Pairs compared:** %d\n\n",
		report.CheckID, report.ProjectID, report.PromotionID, report.PairsCompared)

	folders := byPercentage(report.FolderResults)

	b.WriteString("## Folders\n\n")
	b.WriteString("| Folder | Score | Top match | Flags |\n")
	b.WriteString("|---|---:|---|---|\n")
	for _, f := range folders {
		top, flags := "-", "-"
		if m := topMatch(f); m != nil {
			top = m.MatchedFolder
			if len(m.Flags) > 0 {
				flags = strings.Join(m.Flags, ", ")
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escape(f.FolderName), formatPercent(f.PlagiarismPercentage), escape(top), flags)
	}

	for _, f := range folders {
		matches := visibleMatches(f, opts)
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", escape(f.FolderName))
		b.WriteString("| Match | Overall | MOSS | Bytes |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, m := range matches {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escape(m.MatchedFolder),
				formatPercent(m.OverallMatchPercentage), formatPercent(m.MossScore), formatPercent(m.RabinKarpScore))
		}

		if !opts.ShowFiles {
			continue
		}
		for _, m := range matches {
			if len(m.FileComparisons) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n### %s vs %s\n\n", escape(f.FolderName), escape(m.MatchedFolder))
			for _, fc := range m.FileComparisons {
				fmt.Fprintf(&b, "- `%s` / `%s`: %s (%d lines)\n", fc.File1Path, fc.File2Path, formatPercent(fc.CombinedScore), fc.LineCount)
			}
		}
	}

	if len(report.SkippedFolders) > 0 {
		b.WriteString("\n## Skipped\n\n")
		for _, name := range report.SkippedFolders {
			fmt.Fprintf(&b, "- %s\n", escape(name))
		}
	}

	return b.String()
}

// RenderMarkdown renders Markdown(report) for the terminal. style is a glamour standard
// style name such as "dark", "light" or "notty".
func RenderMarkdown(w io.Writer, report *models.CheckReport, opts Options, style string, width int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(Markdown(report, opts))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

func byPercentage(results []models.FolderResult) []models.FolderResult {
	sorted := append([]models.FolderResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PlagiarismPercentage != sorted[j].PlagiarismPercentage {
			return sorted[i].PlagiarismPercentage > sorted[j].PlagiarismPercentage
		}
		return sorted[i].FolderName < sorted[j].FolderName
	})
	return sorted
}

func visibleMatches(f models.FolderResult, opts Options) []models.Match {
	matches := make([]models.Match, 0, len(f.Matches))
	for _, m := range f.Matches {
		if m.OverallMatchPercentage > 0 && m.OverallMatchPercentage >= opts.MinPercentage {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].OverallMatchPercentage > matches[j].OverallMatchPercentage
	})
	if opts.TopMatches > 0 && len(matches) > opts.TopMatches {
		matches = matches[:opts.TopMatches]
	}
	return matches
}

func topMatch(f models.FolderResult) *models.Match {
	var top *models.Match
	for i := range f.Matches {
		if top == nil || f.Matches[i].OverallMatchPercentage > top.OverallMatchPercentage {
			top = &f.Matches[i]
		}
	}
	if top == nil || top.OverallMatchPercentage == 0 {
		return nil
	}
	return top
}

func percentStyle(theme Theme, pct float64) lipgloss.Style {
	switch {
	case pct > 80:
		return theme.High
	case pct > 60:
		return theme.Medium
	default:
		return theme.Low
	}
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func shortHash(hash *string) string {
	if hash == nil {
		return "-"
	}
	if len(*hash) > 12 {
		return (*hash)[:12]
	}
	return *hash
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
