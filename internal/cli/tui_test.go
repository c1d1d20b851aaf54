package cli

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/bounds"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/session"
	"github.com/artfit/artfit/pkg/tracker"
)

var testRegion = region.Region{
	X: 100, Y: 100, Width: 200, Height: 200,
	MaxWidthInches: 2, MaxHeightInches: 2, MaxDPI: 100,
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds the messages it produces back into m.
func drain(m tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(m, c)
		}
		return m
	}
	m, next := m.Update(msg)
	return drain(m, next)
}

func TestProductListModel(t *testing.T) {
	products := []podapi.Product{
		{ID: "1", Title: "Mug", PrintAreas: map[string]region.Raw{}},
		{ID: "2", Title: "Tee", PrintAreas: map[string]region.Raw{"front": {}}},
	}
	var m tea.Model = NewProductListModel(products)

	m, cmd := m.Update(key("enter"))
	if cmd != nil || m.(ProductListModel).Selected != nil {
		t.Fatal("a product without print areas must not be selectable")
	}
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	if got := m.(ProductListModel).Cursor; got != 1 {
		t.Fatalf("cursor = %d, want 1", got)
	}
	m, cmd = m.Update(key("enter"))
	if cmd == nil {
		t.Error("selecting a product should quit")
	}
	if sel := m.(ProductListModel).Selected; sel == nil || sel.Title != "Tee" {
		t.Errorf("selected = %+v", sel)
	}
	if !strings.Contains(m.View(), "Mug") {
		t.Error("view should list every product")
	}
}

func newEditor(t *testing.T, load func(context.Context, string) (image.Image, error), deps editorDeps) EditorModel {
	t.Helper()
	sess := session.New("test", bounds.ModeAxisAligned, log.New(io.Discard))
	if err := sess.SetRegion(testRegion, "front"); err != nil {
		t.Fatal(err)
	}
	deps.LoadImage = load
	return NewEditorModel(context.Background(), sess, nil, "art.png", nil, deps)
}

func solid(w, h int) func(context.Context, string) (image.Image, error) {
	return func(context.Context, string) (image.Image, error) {
		return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
	}
}

func TestEditorModelKeys(t *testing.T) {
	var saved *artwork.Config
	deps := editorDeps{
		Save: func(cfg artwork.Config) (string, error) {
			saved = &cfg
			return "saved", nil
		},
	}
	m := newEditor(t, solid(100, 100), deps)
	var model tea.Model = m
	model = drain(model, m.Init())

	left := func() float64 {
		snap, _, err := model.(EditorModel).Result()
		if err != nil {
			t.Fatalf("no placement: %v", err)
		}
		return snap.Transform.Left
	}
	start := left()
	if start != 150 {
		t.Fatalf("initial left = %g, want centered 150", start)
	}

	model, _ = model.Update(key("right"))
	if got := left(); got != start+5 {
		t.Errorf("after right: left = %g, want %g", got, start+5)
	}
	model, _ = model.Update(key("L"))
	if got := left(); got != start+30 {
		t.Errorf("after shift+right: left = %g, want %g", got, start+30)
	}
	model, _ = model.Update(key("c"))
	if got := left(); got != start {
		t.Errorf("after center: left = %g, want %g", got, start)
	}
	model, _ = model.Update(key("]"))
	snap, _, _ := model.(EditorModel).Result()
	if snap.Transform.Rotation != 15 {
		t.Errorf("rotation = %g, want 15", snap.Transform.Rotation)
	}

	model, cmd := model.Update(key("w"))
	model = drain(model, cmd)
	if saved == nil || saved.Rotation != 15 {
		t.Errorf("saved config = %+v", saved)
	}
	if !strings.Contains(model.View(), "saved") {
		t.Error("view should show the save status")
	}
}

func TestEditorModelOutside(t *testing.T) {
	var model tea.Model = newEditor(t, solid(100, 100), editorDeps{})
	model = drain(model, model.Init())
	for range 3 {
		model, _ = model.Update(key("L"))
	}
	snap, _, _ := model.(EditorModel).Result()
	if !snap.Bounds.Outside || snap.Bounds.Edges != bounds.EdgeRight {
		t.Errorf("bounds = %+v, want outside right", snap.Bounds)
	}
	if !strings.Contains(model.View(), "outside") {
		t.Error("view should report the artwork outside the print area")
	}
	if st := model.(EditorModel).status; !strings.Contains(st, "crossed the print area") {
		t.Errorf("status = %q, want the crossing reported", st)
	}

	model, _ = model.Update(key("right"))
	if st := model.(EditorModel).status; st != "move" {
		t.Errorf("status = %q, want plain move while still outside", st)
	}
	model, _ = model.Update(key("c"))
	if st := model.(EditorModel).status; !strings.Contains(st, "back inside") {
		t.Errorf("status = %q, want the return reported", st)
	}
}

func TestEditorModelLoadFailure(t *testing.T) {
	fail := func(context.Context, string) (image.Image, error) {
		return nil, errors.New("boom")
	}
	var model tea.Model = newEditor(t, fail, editorDeps{})
	model = drain(model, model.Init())
	m := model.(EditorModel)
	if !errs.Is(m.err, errs.ErrCodeLoadFailed) {
		t.Errorf("err = %v, want LOAD_FAILED", m.err)
	}
	if _, _, err := m.Result(); err == nil {
		t.Error("Result should fail without artwork")
	}

	model, _ = model.Update(key("right"))
	if !errs.Is(model.(EditorModel).err, errs.ErrCodeNoArtwork) {
		t.Errorf("moving without artwork: err = %v", model.(EditorModel).err)
	}
}

func TestMiniature(t *testing.T) {
	tf, err := artwork.New(testRegion, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	snap := tracker.Snapshot{Region: testRegion, Transform: &tf}
	out := miniature(snap, 500, 500, 50, 25)
	lines := strings.Split(out, "\n")
	if len(lines) != 25 {
		t.Fatalf("rows = %d, want 25", len(lines))
	}
	if !strings.Contains(out, "█") || !strings.Contains(out, "·") {
		t.Errorf("miniature lacks artwork or region:\n%s", out)
	}
	if strings.Contains(lines[0], "█") || strings.Contains(lines[0], "·") {
		t.Error("the first row lies above the region and should be empty")
	}

	empty := miniature(tracker.Snapshot{Region: testRegion}, 500, 500, 50, 25)
	if strings.Contains(empty, "█") {
		t.Error("no artwork should draw no blocks")
	}
}
