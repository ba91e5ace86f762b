package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/relevance"
	"github.com/matzehuels/mosaic/pkg/sim"
)

// scoreRow is one item's relevance for a query.
type scoreRow struct {
	ID     string
	Title  string
	Score  float64
	Radius float64
}

// scoreCommand creates the score command for inspecting relevance.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "score [catalog] [query]",
		Short: "Show per-item relevance scores and target radii",
		Long: `Show per-item relevance scores and target radii.

Each item is scored against the query and its score converted to the radius
its cell grows toward. Rows are sorted by score, highest first; ties keep
catalog order.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeCatalog,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 2 {
				query = args[1]
			}
			items, err := loadCatalog(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			rows := scoreRows(items, query, cfg, relevance.Substring{})
			if limit > 0 && limit < len(rows) {
				rows = rows[:limit]
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScoreTable(rows))
			printKeyValue(cmd.OutOrStdout(), "query", fmt.Sprintf("%q", query))
			printKeyValue(cmd.OutOrStdout(), "items", fmt.Sprintf("%d", len(items)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "simulation config file (TOML)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the top n rows")

	return cmd
}

// scoreRows scores every item and sorts by descending score.
func scoreRows(items catalog.Catalog, query string, cfg sim.Config, scorer relevance.Scorer) []scoreRow {
	rows := make([]scoreRow, len(items))
	for i, it := range items {
		s := scorer.Score(query, it)
		rows[i] = scoreRow{
			ID:     it.ID,
			Title:  it.Label(),
			Score:  s,
			Radius: relevance.TargetRadius(s, cfg.BaseRadius, cfg.MaxRadius),
		}
	}
	slices.SortStableFunc(rows, func(a, b scoreRow) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return rows
}

// renderScoreTable formats rows as a bordered table with a score bar.
func renderScoreTable(rows []scoreRow) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			r.ID,
			r.Title,
			fmt.Sprintf("%.2f", r.Score),
			fmt.Sprintf("%.1f", r.Radius),
			scoreBar(r.Score, 10),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("ID", "Title", "Score", "Radius", "").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 2, 3:
				return StyleNumber
			case 4:
				return StyleHighlight
			}
			return StyleValue
		})

	return t.Render()
}

// scoreBar draws score as a bar of width cells.
func scoreBar(score float64, width int) string {
	n := int(score*float64(width) + 0.5)
	n = max(0, min(n, width))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
