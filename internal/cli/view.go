package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/render"
	"github.com/matzehuels/squaremap/pkg/render/term"
	"github.com/matzehuels/squaremap/pkg/squarify"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// viewCommand creates the view command, an interactive terminal treemap.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		sf scanFlags
		lf layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "view [dir]",
		Short: "Browse a treemap in the terminal",
		Long: `Browse a treemap in the terminal.

Arrow keys (or h/j/k/l) move the selection, enter zooms into the selected
directory, backspace zooms out, g returns to the root and q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			sf.apply(cmd, &opts, args)
			lf.apply(cmd, &opts)
			if opts.Root == "" && opts.Input == "" {
				opts.Root = "."
			}
			return c.runView(cmd.Context(), opts, sf.noCache)
		},
	}

	sf.register(cmd)
	lf.register(cmd)
	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options, noCache bool) error {
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	t, err := runner.Scan(ctx, opts)
	if err != nil {
		return err
	}
	focus, err := pipeline.ResolveFocus(t, opts.Focus)
	if err != nil {
		return err
	}
	palette, err := treemap.LookupPalette(opts.Palette)
	if err != nil {
		return err
	}

	m := newViewModel(t, focus, runner.Memo,
		treemap.WithDepth(opts.Depth),
		treemap.WithMinArea(opts.MinArea),
		treemap.WithPalette(palette),
	)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// viewModel - Interactive treemap browser
// =============================================================================

// Terminal cells are roughly twice as tall as wide, so the layout is
// computed on a frame of cols x 2*rows units and squeezed vertically.
const (
	rowAspect   = 2.0
	chromeLines = 2 // status and help lines
)

var (
	viewStatusStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	viewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

type viewModel struct {
	tree       *hierarchy.Tree
	memo       *treemap.Memo
	layoutOpts []treemap.Option

	focus    hierarchy.NodeID
	cols     int
	rows     int
	layout   treemap.Layout
	selected int
	err      error
}

func newViewModel(t *hierarchy.Tree, focus hierarchy.NodeID, memo *treemap.Memo, opts ...treemap.Option) viewModel {
	return viewModel{
		tree:       t,
		memo:       memo,
		layoutOpts: opts,
		focus:      focus,
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.rows = msg.Height - chromeLines
		m.relayout()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.move(-1, 0)
		case "right", "l":
			m.move(1, 0)
		case "up", "k":
			m.move(0, -1)
		case "down", "j":
			m.move(0, 1)
		case "tab":
			if n := len(m.layout.Cells); n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "enter":
			if cell, ok := m.current(); ok {
				if target := treemap.ZoomTarget(m.tree, m.focus, cell.Node); target != hierarchy.NoParent {
					m.setFocus(target)
				}
			}
		case "backspace", "u":
			if parent := m.tree.Parent(m.focus); parent != hierarchy.NoParent {
				m.setFocus(parent)
			}
		case "g", "home":
			m.setFocus(m.tree.Root())
		}
	}
	return m, nil
}

func (m viewModel) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return "loading..."
	}
	var b strings.Builder
	canvas := term.Canvas{
		Cols:     m.cols,
		Rows:     m.rows,
		ScaleX:   1,
		ScaleY:   1 / rowAspect,
		Selected: hierarchy.NoParent,
		Labels:   true,
	}
	if cell, ok := m.current(); ok {
		canvas.Selected = cell.Node
	}
	b.WriteString(canvas.Render(m.layout.Cells))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(viewHelpStyle.Render("←↑↓→ select  ⏎ zoom in  ⌫ zoom out  g root  q quit"))
	return b.String()
}

func (m viewModel) statusLine() string {
	if m.err != nil {
		return viewErrorStyle.Render(m.err.Error())
	}
	cell, ok := m.current()
	if !ok {
		return viewStatusStyle.Render(render.Printable(m.tree.Path(m.focus))) + "  " + formatBytes(m.tree.Size(m.focus))
	}
	share := 0.0
	if total := m.tree.Size(m.focus); total > 0 {
		share = 100 * cell.Size / total
	}
	name := render.Printable(cell.Path)
	if !cell.Leaf {
		name += "/"
	}
	return viewStatusStyle.Render(name) + "  " + fmt.Sprintf("%s  %.1f%%", formatBytes(cell.Size), share)
}

func (m *viewModel) current() (treemap.Cell, bool) {
	if m.selected < 0 || m.selected >= len(m.layout.Cells) {
		return treemap.Cell{}, false
	}
	return m.layout.Cells[m.selected], true
}

func (m *viewModel) setFocus(id hierarchy.NodeID) {
	if id == m.focus {
		return
	}
	prev := m.focus
	m.focus = id
	m.relayout()
	// Keep the directory we came out of selected when zooming out.
	for i, c := range m.layout.Cells {
		if isAncestor(m.tree, prev, c.Node) {
			m.selected = i
			break
		}
	}
}

func (m *viewModel) relayout() {
	if m.cols <= 0 || m.rows <= 0 {
		return
	}
	opts := append([]treemap.Option{treemap.WithFocus(m.focus)}, m.layoutOpts...)
	if m.memo != nil {
		opts = append(opts, treemap.WithMemo(m.memo))
	}
	bounds := squarify.Rect{W: float64(m.cols), H: float64(m.rows) * rowAspect}
	l, err := treemap.Build(m.tree, bounds, opts...)
	m.err = err
	if err != nil {
		return
	}
	m.layout = l
	m.selected = 0
}

// move selects the nearest cell in direction (dx, dy).
func (m *viewModel) move(dx, dy float64) {
	if next := neighbor(m.layout.Cells, m.selected, dx, dy); next >= 0 {
		m.selected = next
	}
}

// neighbor returns the index of the cell whose center lies closest to the
// center of cells[from] in direction (dx, dy), or -1 if there is none.
// Offsets across the direction of travel count double.
func neighbor(cells []treemap.Cell, from int, dx, dy float64) int {
	if from < 0 || from >= len(cells) {
		return -1
	}
	fx, fy := center(cells[from].Rect)
	best, bestDist := -1, math.Inf(1)
	for i, c := range cells {
		if i == from {
			continue
		}
		cx, cy := center(c.Rect)
		along := (cx-fx)*dx + (cy-fy)*dy
		if along <= 0 {
			continue
		}
		across := math.Abs((cx-fx)*dy - (cy-fy)*dx)
		if d := along + 2*across; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func center(r squarify.Rect) (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// isAncestor reports whether a is an ancestor of (or equal to) n.
func isAncestor(t *hierarchy.Tree, a, n hierarchy.NodeID) bool {
	for ; n != hierarchy.NoParent; n = t.Parent(n) {
		if n == a {
			return true
		}
	}
	return false
}
