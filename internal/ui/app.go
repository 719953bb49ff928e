package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"rasterscope/internal/config"
	"rasterscope/internal/debug"
	"rasterscope/internal/loader"
	"rasterscope/internal/raster"
)

// Panel sizes, in cells
const (
	listWidth    = 34
	listHeight   = 8
	detailWidth  = 40
	detailHeight = 7
)

// App is the main application controller. Everything it owns is touched
// only from the Run goroutine; decoded rasters arrive over a channel.
type App struct {
	screen     tcell.Screen
	cfg        config.Config
	loader     *loader.Loader
	layers     *raster.Layers
	entries    []LayerEntry
	mapView    *MapView
	listView   *ListView
	detailView *DetailView
	events     chan tcell.Event
	results    chan loader.Result
	quit       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp creates a new application on the terminal
func NewApp(cfg config.Config, ld *loader.Loader) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	return newApp(screen, cfg, ld), nil
}

// newApp builds the application on an initialized screen
func newApp(screen tcell.Screen, cfg config.Config, ld *loader.Loader) *App {
	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.Clear()

	width, height := screen.Size()
	layers := &raster.Layers{}

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		screen:     screen,
		cfg:        cfg,
		loader:     ld,
		layers:     layers,
		mapView:    NewMapView(width, height, layers, cfg),
		listView:   NewListView(1, height-listHeight-1, listWidth, listHeight),
		detailView: NewDetailView(width-detailWidth-1, 1, detailWidth, detailHeight),
		events:     make(chan tcell.Event, 16),
		results:    make(chan loader.Result, 16),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Open starts loading files in the background. Paths that are still
// loading from an earlier call are skipped.
func (a *App) Open(paths []string) {
	var todo []string
	for _, p := range paths {
		if a.findLoading(p) >= 0 {
			continue
		}
		a.entries = append(a.entries, LayerEntry{Name: displayName(p), Path: p, State: LayerLoading, Index: -1})
		todo = append(todo, p)
	}
	if len(todo) == 0 {
		return
	}
	a.listView.Update(a.entries)

	ch := a.loader.Load(a.ctx, todo)
	go func() {
		for r := range ch {
			select {
			case a.results <- r:
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

func displayName(path string) string {
	return filepath.Base(path)
}

func (a *App) findLoading(path string) int {
	for i, e := range a.entries {
		if e.Path == path && e.State == LayerLoading {
			return i
		}
	}
	return -1
}

// Run starts the application main loop
func (a *App) Run() error {
	defer a.cleanup()

	go a.pollEvents()

	a.render()
	for {
		select {
		case <-a.quit:
			return nil

		case ev := <-a.events:
			if !a.handleEvent(ev) {
				return nil // Quit requested
			}

		case r := <-a.results:
			a.handleResult(r)
		}

		a.render()
	}
}

// pollEvents forwards terminal events until the screen is finalized
func (a *App) pollEvents() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case a.events <- ev:
		case <-a.ctx.Done():
			return
		}
	}
}

// handleResult moves a finished load into the layer stack. Failed loads
// only mark their list entry.
func (a *App) handleResult(r loader.Result) {
	if errors.Is(r.Err, loader.ErrAlreadyLoading) {
		return
	}
	i := a.findLoading(r.Path)
	if i < 0 {
		return
	}
	entry := &a.entries[i]

	if r.Err != nil || r.Sampler == nil {
		entry.State = LayerFailed
		entry.Err = r.Err
		debug.Warn("layer failed", slog.String("path", r.Path), slog.Any("err", r.Err))
		a.listView.Update(a.entries)
		return
	}

	first := a.layers.Len() == 0
	entry.Index = a.layers.Append(r.Name, r.Sampler)
	entry.State = LayerReady
	entry.Visible = true
	debug.Info("layer added", slog.String("name", r.Name), slog.Int("index", entry.Index))

	if first {
		a.mapView.FitExtent(r.Sampler.Extent())
	}
	a.listView.Update(a.entries)
}

// updateReadout samples the layers under the cursor
func (a *App) updateReadout() {
	pos, ok := a.mapView.Cursor()
	value, idx := a.mapView.Sample()

	r := Readout{
		Lon:       pos.X,
		Lat:       pos.Y,
		HasCursor: ok,
		Value:     value,
		Zoom:      a.mapView.Zoom(),
		Preset:    a.mapView.Preset(),
	}

	layer := a.layers.At(idx)
	if layer == nil {
		layer = a.selectedLayer()
	}
	if layer != nil {
		if idx >= 0 {
			r.Layer = layer.Name
		}
		r.Kind = layer.Sampler.Kind()
		if rng, ok := layer.Sampler.DisplayRange(); ok {
			r.RangeMin, r.RangeMax, r.HasRange = rng.Min, rng.Max, true
		}
	}
	a.detailView.SetReadout(r)
}

// selectedLayer returns the layer of the selected list entry, if loaded
func (a *App) selectedLayer() *raster.Layer {
	i := a.listView.Selected()
	if i < 0 || a.entries[i].State != LayerReady {
		return nil
	}
	return a.layers.At(a.entries[i].Index)
}

// render renders the current view to the screen
func (a *App) render() {
	a.screen.Clear()

	a.updateReadout()
	a.mapView.Draw(a.screen)
	a.listView.Draw(a.screen)
	a.detailView.Draw(a.screen)

	a.screen.Show()
}

// handleEvent processes keyboard, mouse and resize events. It returns
// false when the user quits.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			close(a.quit)
			return false

		case tcell.KeyUp:
			a.listView.SelectPrev()

		case tcell.KeyDown:
			a.listView.SelectNext()

		case tcell.KeyRune:
			return a.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		a.mapView.HandleMouse(ev)

	case *tcell.EventResize:
		a.handleResize()
	}

	return true
}

func (a *App) handleRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		close(a.quit)
		return false

	case '+', '=':
		a.mapView.ZoomIn()

	case '-', '_':
		a.mapView.ZoomOut()

	case 'h':
		a.mapView.Pan(-1, 0)
	case 'l':
		a.mapView.Pan(1, 0)
	case 'k':
		a.mapView.Pan(0, 1)
	case 'j':
		a.mapView.Pan(0, -1)

	case 'r', 'R':
		a.mapView.Reset()

	case 'f', 'F':
		if layer := a.selectedLayer(); layer != nil {
			a.mapView.FitExtent(layer.Sampler.Extent())
		}

	case 'g', 'G':
		a.mapView.ToggleGrid()

	case 'p', 'P':
		p := a.mapView.CyclePreset()
		debug.Log("preset %s", p)

	case ' ':
		a.toggleSelected()

	case 'c', 'C':
		a.clearLayers()
	}
	return true
}

// toggleSelected flips the visibility of the selected layer
func (a *App) toggleSelected() {
	i := a.listView.Selected()
	if i < 0 || a.entries[i].State != LayerReady {
		return
	}
	e := &a.entries[i]
	if a.layers.SetVisible(e.Index, !e.Visible) {
		e.Visible = !e.Visible
	}
	a.listView.Update(a.entries)
}

// clearLayers drops every loaded or failed layer; loads still in flight
// stay listed and are added when they finish.
func (a *App) clearLayers() {
	a.layers.Clear()
	kept := a.entries[:0]
	for _, e := range a.entries {
		if e.State == LayerLoading {
			kept = append(kept, e)
		}
	}
	a.entries = kept
	a.listView.Update(a.entries)
	debug.Log("layers cleared, %d loads pending", len(kept))
}

// handleResize handles terminal resize events
func (a *App) handleResize() {
	a.screen.Sync()
	width, height := a.screen.Size()

	a.mapView.UpdateDimensions(width, height)
	a.listView.UpdateDimensions(1, height-listHeight-1, listWidth, listHeight)
	a.detailView.UpdateDimensions(width-detailWidth-1, 1, detailWidth, detailHeight)
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.screen != nil {
		a.screen.Fini()
	}
}
