package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/sim"
)

var watchItems = catalog.Catalog{
	{ID: "1", Title: "Alpha", Category: "tools"},
	{ID: "2", Title: "Beta", Category: "games"},
	{ID: "3", Title: "Gamma", Category: "tools"},
}

func newTestWatch(t *testing.T) (watchModel, *engine.Engine, *engine.ManualScheduler, chan engine.Frame) {
	t.Helper()
	sched := engine.NewManualScheduler()
	frames := make(chan engine.Frame, 1)
	e, err := engine.New(sim.DefaultConfig(),
		engine.WithScheduler(sched),
		engine.WithSeed(3),
		engine.WithPublisher(latestOnly(frames)),
		engine.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(watchItems); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Stop)
	return newWatchModel(e, frames, watchItems), e, sched, frames
}

func update(t *testing.T, m watchModel, msg tea.Msg) (watchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return wm, cmd
}

func TestWatchTyping(t *testing.T) {
	m, e, _, _ := newTestWatch(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("to")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.query != "to x" || e.Query() != "to x" {
		t.Errorf("query = %q, engine = %q, want %q", m.query, e.Query(), "to x")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if e.Query() != "to" {
		t.Errorf("after backspace engine query = %q, want to", e.Query())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.query != "" || e.Query() != "" {
		t.Errorf("ctrl+u left %q", m.query)
	}

	// Backspace on an empty query is harmless.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.query != "" {
		t.Errorf("query = %q", m.query)
	}
}

func TestWatchQuit(t *testing.T) {
	m, _, _, _ := newTestWatch(t)
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := update(t, m, tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("%v returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v did not quit", k)
		}
	}
}

func TestWatchFrames(t *testing.T) {
	m, e, sched, frames := newTestWatch(t)
	e.SetQuery("tools")
	m.query = "tools"
	sched.Run(20)

	msg := waitForFrame(frames)()
	fm, ok := msg.(frameMsg)
	if !ok {
		t.Fatalf("waitForFrame() = %T, want frameMsg", msg)
	}
	if fm.Seq != 20 {
		t.Errorf("latest frame seq = %d, want 20", fm.Seq)
	}

	m, cmd := update(t, m, fm)
	if cmd == nil {
		t.Error("frame should re-arm the frame wait")
	}
	view := m.View()
	for _, want := range []string{"tick 20", "3/3 cells", "Alpha", "Gamma", "tools"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Index(view, "Alpha") > strings.Index(view, "Beta") {
		t.Error("matching item should rank above non-matching")
	}
}

func TestWatchWindowSize(t *testing.T) {
	m, _, _, _ := newTestWatch(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.rows != 21 {
		t.Errorf("rows = %d, want 21", m.rows)
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 4})
	if m.rows != 3 {
		t.Errorf("rows = %d, want minimum 3", m.rows)
	}
}

func TestLatestOnly(t *testing.T) {
	ch := make(chan engine.Frame, 1)
	publish := latestOnly(ch)
	publish(engine.Frame{Seq: 1})
	publish(engine.Frame{Seq: 2})
	publish(engine.Frame{Seq: 3})
	if f := <-ch; f.Seq != 3 {
		t.Errorf("kept frame %d, want 3", f.Seq)
	}
}
