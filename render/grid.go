package render

import (
	"html/template"
	"log/slog"
	"sync"

	"giveaway-grid/models"
	"giveaway-grid/results"
)

// Snapshot is what the grid container shows at one point in time
type Snapshot struct {
	State   results.State
	HTML    template.HTML
	Version uint64
}

// Grid is the HTML render target for a results controller.
// It keeps the current fragment and notifies subscribers when it changes.
type Grid struct {
	logger *slog.Logger

	mu      sync.Mutex
	state   results.State
	html    template.HTML
	version uint64
	subs    map[int]chan struct{}
	nextSub int
}

// NewGrid creates an empty grid in the idle state
func NewGrid(logger *slog.Logger) *Grid {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grid{
		logger: logger,
		state:  results.StateIdle,
		subs:   make(map[int]chan struct{}),
	}
}

// ShowLoading implements results.View
func (g *Grid) ShowLoading() {
	html, err := LoadingHTML()
	g.replace(results.StateLoading, html, err)
}

// ShowItems implements results.View
func (g *Grid) ShowItems(items []models.DisplayItem) {
	html, err := ItemsHTML(items)
	g.replace(results.StatePopulated, html, err)
}

// ShowEmpty implements results.View
func (g *Grid) ShowEmpty() {
	html, err := EmptyHTML()
	g.replace(results.StateEmpty, html, err)
}

// ShowError implements results.View
func (g *Grid) ShowError(message string) {
	html, err := ErrorHTML(message)
	g.replace(results.StateError, html, err)
}

// Snapshot returns the current contents
func (g *Grid) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{State: g.state, HTML: g.html, Version: g.version}
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce; read Snapshot on receipt to get the latest contents.
func (g *Grid) Subscribe() (<-chan struct{}, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	ch := make(chan struct{}, 1)
	g.subs[id] = ch

	return ch, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

func (g *Grid) replace(state results.State, html template.HTML, err error) {
	if err != nil {
		g.logger.Error("failed to render grid fragment", "state", state.String(), "error", err)
		state = results.StateError
		html = `<div class="no-entries error" role="alert">Something went wrong while showing the results.</div>`
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = state
	g.html = html
	g.version++

	for _, ch := range g.subs {
		select {
		case ch <- struct{}{}:
		default:
			// a signal is already pending
		}
	}
}
