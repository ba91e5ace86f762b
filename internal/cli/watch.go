package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/observability"
)

// Watch styles
var (
	watchQueryStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	watchCursorStyle = lipgloss.NewStyle().Foreground(colorAccent)
	watchDimStyle    = lipgloss.NewStyle().Foreground(colorFaint)
)

// watchCommand creates the interactive watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		configPath string
		query      string
		interval   time.Duration
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "watch [catalog]",
		Short: "Watch the mosaic respond to a query as you type",
		Long: `Watch the mosaic respond to a query as you type.

The watch command runs the layout engine on a wall-clock scheduler and shows
the most relevant cells live. Type to edit the query, backspace to delete,
ctrl+u to clear and esc to quit.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCatalog,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := loadCatalog(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			sched := engine.NewClockScheduler(interval)
			defer sched.Close()

			frames := make(chan engine.Frame, 1)
			opts := []engine.Option{
				engine.WithScheduler(sched),
				engine.WithPublisher(latestOnly(frames)),
				engine.WithLogger(discardLogger()),
				engine.WithHooks(observability.NoopSimulationHooks{}),
			}
			if seed != 0 {
				opts = append(opts, engine.WithSeed(seed))
			}
			e, err := engine.New(cfg, opts...)
			if err != nil {
				return err
			}
			e.SetQuery(query)
			if err := e.Start(items); err != nil {
				return err
			}
			defer e.Stop()

			return runWatch(cmd.Context(), newWatchModel(e, frames, items))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "simulation config file (TOML)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "initial query")
	cmd.Flags().DurationVar(&interval, "interval", engine.DefaultInterval, "time between ticks")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for initial placement (0 = random)")

	return cmd
}

func runWatch(ctx context.Context, m watchModel) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// latestOnly returns a publisher that keeps at most the newest frame in ch.
// Ticks never wait on the terminal.
func latestOnly(ch chan engine.Frame) engine.Publisher {
	return func(f engine.Frame) {
		for {
			select {
			case ch <- f:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// =============================================================================
// watchModel - live query and top cells
// =============================================================================

// frameMsg delivers a published frame to the model.
type frameMsg engine.Frame

type watchModel struct {
	engine *engine.Engine
	frames <-chan engine.Frame
	items  map[string]catalog.Item
	total  int
	query  string
	frame  engine.Frame
	rows   int
}

func newWatchModel(e *engine.Engine, frames <-chan engine.Frame, items catalog.Catalog) watchModel {
	byID := make(map[string]catalog.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return watchModel{
		engine: e,
		frames: frames,
		items:  byID,
		total:  len(items),
		query:  e.Query(),
		rows:   10,
	}
}

func waitForFrame(ch <-chan engine.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return frameMsg(f)
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = engine.Frame(msg)
		return m, waitForFrame(m.frames)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyBackspace:
			if r := []rune(m.query); len(r) > 0 {
				m.setQuery(string(r[:len(r)-1]))
			}
		case tea.KeyCtrlU:
			m.setQuery("")
		case tea.KeySpace:
			m.setQuery(m.query + " ")
		case tea.KeyRunes:
			m.setQuery(m.query + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.rows = max(msg.Height-9, 3)
	}
	return m, nil
}

func (m *watchModel) setQuery(q string) {
	m.query = q
	m.engine.SetQuery(q)
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("mosaic"))
	b.WriteString(watchDimStyle.Render("  type to search · ctrl+u clear · esc quit"))
	b.WriteString("\n\n")

	b.WriteString(watchDimStyle.Render("query "))
	b.WriteString(watchQueryStyle.Render(m.query))
	b.WriteString(watchCursorStyle.Render("▌"))
	b.WriteString("\n")

	stats := fmt.Sprintf("tick %d · %d/%d cells", m.frame.Seq, len(m.frame.Cells), m.total)
	if n := len(m.frame.Dropped); n > 0 {
		stats += fmt.Sprintf(" · %d hidden", n)
	}
	b.WriteString(watchDimStyle.Render(stats))
	b.WriteString("\n")

	b.WriteString(m.cellTable())
	return b.String()
}

func (m watchModel) cellTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)

	top := m.frame.TopCells(m.rows)
	rows := make([][]string, len(top))
	for i, c := range top {
		it := m.items[c.ID]
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			it.Label(),
			it.Category,
			fmt.Sprintf("%.0f", c.Polygon.Area()),
			scoreBar(c.Relevance, 12),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("#", "Item", "Category", "Area", "Relevance").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 {
				return StyleHighlight
			}
			if col == 0 || col == 3 {
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}
