package cli

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/assist"
	"github.com/artfit/artfit/pkg/bounds"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/session"
	"github.com/artfit/artfit/pkg/tracker"
	"github.com/artfit/artfit/pkg/variants"
)

var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	miniArtStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	miniEdgeStyle = lipgloss.NewStyle().Foreground(colorBlue)
	miniFrame     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// =============================================================================
// ProductListModel - catalog product selection
// =============================================================================

// ProductListModel lets the user pick a base product from the catalog.
type ProductListModel struct {
	Products []podapi.Product
	Cursor   int
	Selected *podapi.Product
	Height   int
	Offset   int
}

func NewProductListModel(products []podapi.Product) ProductListModel {
	return ProductListModel{Products: products, Height: 15}
}

func (m ProductListModel) Init() tea.Cmd { return nil }

func (m ProductListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = min(m.Offset, m.Cursor)
			}
		case "down", "j":
			if m.Cursor < len(m.Products)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Products[m.Cursor].PrintAreas) == 0 {
				return m, nil
			}
			p := m.Products[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ProductListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select Product"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Products))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Products[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		views := strings.Join(p.Views(), ", ")
		if views == "" {
			views = "none"
		}
		rows = append(rows, []string{
			cursor,
			p.ID.String(),
			p.Title,
			views,
			fmt.Sprintf("%d colors", len(variants.Colors(p.Variants))),
			fmt.Sprintf("%.2f", p.BasePrice),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Product", "Print areas", "Colors", "Price").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Products) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle()
			if len(m.Products[idx].PrintAreas) == 0 {
				style = style.Foreground(colorDim)
			} else if col >= 3 {
				style = style.Foreground(colorGray)
			}
			if idx == m.Cursor {
				style = style.Bold(true)
				if len(m.Products[idx].PrintAreas) > 0 && col < 3 {
					style = style.Foreground(colorGreen)
				}
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Products))))
	return b.String()
}

// =============================================================================
// EditorModel - interactive placement
// =============================================================================

// editorDeps performs the editor's slow work. Each function runs inside a
// tea.Cmd, off the UI loop.
type editorDeps struct {
	// LoadImage fetches and decodes an image by path or URL.
	LoadImage func(ctx context.Context, src string) (image.Image, error)
	// Export renders and writes the print file, returning a status line.
	Export func(ctx context.Context, s *session.Session) (string, error)
	// Save writes the placement, returning a status line.
	Save func(cfg artwork.Config) (string, error)
}

type loadedMsg struct {
	ticket session.Ticket
	load   session.Load
}

type statusMsg struct {
	text string
	err  error
}

// boundsWatch follows the session's bounds checks and remembers when the
// artwork crossed the print region edge.
type boundsWatch struct {
	mu      sync.Mutex
	last    bounds.State
	seen    bool
	crossed *bounds.State
}

func (w *boundsWatch) observe(snap tracker.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen && snap.Bounds.Outside != w.last.Outside {
		st := snap.Bounds
		w.crossed = &st
	}
	w.last, w.seen = snap.Bounds, true
}

// take returns the state after the latest crossing and forgets it.
func (w *boundsWatch) take() (bounds.State, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.crossed == nil {
		return bounds.State{}, false
	}
	st := *w.crossed
	w.crossed = nil
	return st, true
}

// EditorModel edits the artwork placement of one session from the
// keyboard. Loads, exports and saves run as commands; their results come
// back as messages and are applied on the UI loop.
type EditorModel struct {
	ctx     context.Context
	sess    *session.Session
	product *podapi.Product
	deps    editorDeps
	watch   *boundsWatch

	artSrc  string
	restore *artwork.Config

	views  []string
	view   int
	colors []string
	color  int

	canvasW, canvasH float64
	step             float64

	status string
	err    error
	width  int
}

// NewEditorModel edits sess, whose region is already selected. artSrc is
// loaded on start, placed as restore says when restore is non-nil.
func NewEditorModel(ctx context.Context, sess *session.Session, p *podapi.Product, artSrc string, restore *artwork.Config, deps editorDeps) EditorModel {
	m := EditorModel{
		ctx:     ctx,
		sess:    sess,
		product: p,
		deps:    deps,
		watch:   &boundsWatch{},
		artSrc:  artSrc,
		restore: restore,
		canvasW: 500,
		canvasH: 500,
		step:    5,
		width:   80,
	}
	if p != nil {
		m.views = p.Views()
		for i, v := range m.views {
			if v == sess.View() {
				m.view = i
			}
		}
		m.colors = variants.Colors(p.Variants)
	}
	sess.Subscribe(m.watch.observe)
	return m
}

// WithCanvas sets the canvas size the miniature maps from.
func (m EditorModel) WithCanvas(w, h float64) EditorModel {
	if w > 0 && h > 0 {
		m.canvasW, m.canvasH = w, h
	}
	return m
}

func (m EditorModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.artSrc != "" {
		var t session.Ticket
		if m.restore != nil {
			t = m.sess.BeginRestore(m.restore)
		} else {
			t = m.sess.Begin(session.SlotArtwork)
		}
		cmds = append(cmds, m.load(t, m.artSrc))
	}
	cmds = append(cmds, m.loadProductImage())
	return tea.Batch(cmds...)
}

func (m EditorModel) load(t session.Ticket, src string) tea.Cmd {
	ctx, loadImage := m.ctx, m.deps.LoadImage
	return func() tea.Msg {
		img, err := loadImage(ctx, src)
		return loadedMsg{ticket: t, load: session.Load{Image: img, URL: remoteURL(src), Err: err}}
	}
}

func (m EditorModel) loadProductImage() tea.Cmd {
	if m.product == nil || len(m.colors) == 0 {
		return nil
	}
	url := m.product.ImageURL(m.colors[m.color], m.sess.View())
	if url == "" {
		return nil
	}
	return m.load(m.sess.Begin(session.SlotProduct), url)
}

// remoteURL keeps src only when it can be stored with a placement.
func remoteURL(src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return ""
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case loadedMsg:
		applied, err := m.sess.Complete(msg.ticket, msg.load)
		if applied {
			m.setResult(fmt.Sprintf("Loaded %s", msg.ticket.Slot()), err)
		}
	case statusMsg:
		m.setResult(msg.text, msg.err)
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *EditorModel) setResult(text string, err error) {
	m.status, m.err = text, err
	if st, ok := m.watch.take(); ok && err == nil {
		if st.Outside {
			m.status = fmt.Sprintf("%s: artwork crossed the print area (%s)", text, st.Edges)
		} else {
			m.status = text + ": artwork back inside the print area"
		}
	}
}

func (m EditorModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.move(-m.step, 0)
	case "right", "l":
		m.move(m.step, 0)
	case "up", "k":
		m.move(0, -m.step)
	case "down", "j":
		m.move(0, m.step)
	case "shift+left", "H":
		m.move(-5*m.step, 0)
	case "shift+right", "L":
		m.move(5*m.step, 0)
	case "shift+up", "K":
		m.move(0, -5*m.step)
	case "shift+down", "J":
		m.move(0, 5*m.step)
	case "+", "=":
		m.scale(1.05)
	case "-", "_":
		m.scale(1 / 1.05)
	case "[":
		m.rotate(-15)
	case "]":
		m.rotate(15)
	case "f":
		m.apply(assist.OpAutoFit)
	case "c":
		m.apply(assist.OpCenter)
	case "r":
		m.apply(assist.OpReset)
	case "s":
		m.apply(assist.OpSmartResize)
	case "v":
		return m.nextView()
	case "n":
		if len(m.colors) > 1 {
			m.color = (m.color + 1) % len(m.colors)
			m.status, m.err = "Color "+m.colors[m.color], nil
			return m, m.loadProductImage()
		}
	case "e":
		return m, m.runExport()
	case "w":
		return m, m.runSave()
	}
	return m, nil
}

func (m *EditorModel) transform() (artwork.Transform, bool) {
	snap := m.sess.Snapshot()
	if snap.Transform == nil {
		m.setResult("", errs.New(errs.ErrCodeNoArtwork, "no artwork placed"))
		return artwork.Transform{}, false
	}
	return *snap.Transform, true
}

func (m *EditorModel) move(dx, dy float64) {
	if t, ok := m.transform(); ok {
		m.manipulate(tracker.Move, tracker.Geometry{Left: t.Left + dx, Top: t.Top + dy})
	}
}

func (m *EditorModel) scale(f float64) {
	if t, ok := m.transform(); ok {
		m.manipulate(tracker.Scale, tracker.Geometry{ScaleX: t.ScaleX * f, ScaleY: t.ScaleY * f})
	}
}

func (m *EditorModel) rotate(deg float64) {
	if t, ok := m.transform(); ok {
		m.manipulate(tracker.Rotate, tracker.Geometry{Rotation: t.Rotation + deg})
	}
}

func (m *EditorModel) manipulate(kind tracker.Kind, g tracker.Geometry) {
	_, err := m.sess.Manipulate(kind, g)
	m.setResult(kind.String(), err)
}

func (m *EditorModel) apply(op assist.Op) {
	_, err := m.sess.Apply(op)
	m.setResult(op.String(), err)
}

func (m EditorModel) nextView() (tea.Model, tea.Cmd) {
	if len(m.views) < 2 {
		return m, nil
	}
	next := (m.view + 1) % len(m.views)
	if _, err := m.sess.AttachProduct(m.product, m.views[next]); err != nil {
		m.setResult("", err)
		return m, nil
	}
	m.view = next
	m.setResult("View "+m.views[next], nil)
	return m, m.loadProductImage()
}

func (m EditorModel) runExport() tea.Cmd {
	if m.deps.Export == nil {
		return nil
	}
	ctx, sess, fn := m.ctx, m.sess, m.deps.Export
	return func() tea.Msg {
		text, err := fn(ctx, sess)
		return statusMsg{text: text, err: err}
	}
}

func (m EditorModel) runSave() tea.Cmd {
	if m.deps.Save == nil {
		return nil
	}
	cfg, err := m.sess.Config()
	if err != nil {
		return func() tea.Msg { return statusMsg{err: err} }
	}
	fn := m.deps.Save
	return func() tea.Msg {
		text, err := fn(cfg)
		return statusMsg{text: text, err: err}
	}
}

func (m EditorModel) View() string {
	var b strings.Builder
	snap := m.sess.Snapshot()

	title := []string{StyleTitle.Render("artfit")}
	if m.product != nil {
		title = append(title, m.product.Title)
	}
	if v := m.sess.View(); v != "" {
		title = append(title, v)
	}
	if len(m.colors) > 0 {
		title = append(title, m.colors[m.color])
	}
	b.WriteString(strings.Join(title, StyleDim.Render(" · ")))
	b.WriteString("\n\n")

	cols := min(max(m.width-4, 20), 60)
	rows := max(int(float64(cols)*m.canvasH/m.canvasW/2), 8)
	b.WriteString(miniFrame.Render(miniature(snap, m.canvasW, m.canvasH, cols, rows)))
	b.WriteString("\n")

	switch {
	case m.sess.Loading(session.SlotArtwork):
		b.WriteString(StyleDim.Render("Loading artwork..."))
	case snap.Transform == nil:
		b.WriteString(StyleDim.Render("No artwork placed"))
	default:
		t := snap.Transform
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			StyleValue.Render(fmt.Sprintf("x %.1f y %.1f", snap.RelativeX, snap.RelativeY)),
			StyleValue.Render(fmt.Sprintf("%.0fx%.0f px", t.ScaledWidth(), t.ScaledHeight())),
			StyleValue.Render(fmt.Sprintf("scale %.3g", snap.Scale)),
			StyleValue.Render(fmt.Sprintf("%g°", t.Rotation)))
		b.WriteString(boundsLabel(snap.Bounds))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + errs.UserMessage(m.err))
	} else if m.status != "" {
		b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.status)
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("←↑↓→ move (shift ×5)  +/- scale  [ ] rotate  f fit  c center  r reset  s shrink"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("v view  n color  e export  w save placement  q quit"))
	return b.String()
}

// Result returns the final placement, or an error when none was made.
func (m EditorModel) Result() (tracker.Snapshot, artwork.Config, error) {
	cfg, err := m.sess.Config()
	return m.sess.Snapshot(), cfg, err
}

// miniature draws the canvas as a cols x rows character grid: the print
// region as an outline and the artwork's rotated bounding box as blocks,
// red where it leaves the region.
func miniature(s tracker.Snapshot, canvasW, canvasH float64, cols, rows int) string {
	cw, ch := canvasW/float64(cols), canvasH/float64(rows)
	cell := func(v, size float64) int { return int(v / size) }

	r := s.Region
	rl, rr := cell(r.X, cw), cell(r.X+r.Width-1e-9, cw)
	rt, rb := cell(r.Y, ch), cell(r.Y+r.Height-1e-9, ch)
	bounds := r.Bounds()

	var lines []string
	for row := range rows {
		var line strings.Builder
		for col := range cols {
			x, y := (float64(col)+0.5)*cw, (float64(row)+0.5)*ch
			onEdge := r.Usable() &&
				((col == rl || col == rr) && row >= rt && row <= rb ||
					(row == rt || row == rb) && col >= rl && col <= rr)

			if s.Transform != nil && inBox(s.Transform.RotatedBox(), x, y) {
				if s.Bounds.Outside && !inBox(bounds, x, y) {
					line.WriteString(StyleOutside.Render("█"))
				} else {
					line.WriteString(miniArtStyle.Render("█"))
				}
				continue
			}
			if onEdge {
				line.WriteString(miniEdgeStyle.Render("·"))
				continue
			}
			line.WriteByte(' ')
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func inBox(b region.Rect, x, y float64) bool {
	return x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom
}
