package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"giveaway-grid/fetcher"
	"giveaway-grid/models"
)

// DefaultMaxPages bounds page counts when no option overrides it
const DefaultMaxPages = 20

// Controller drives one render target through the fetch-then-render cycle.
// Only the most recently issued request may update the view.
type Controller struct {
	fetcher  fetcher.Fetcher
	view     View
	maxPages int
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	lastErr error

	wg sync.WaitGroup
}

// Option configures a Controller
type Option func(*Controller)

// WithMaxPages sets the largest accepted page count
func WithMaxPages(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithTimeout bounds each request; zero means no timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller in the idle state
func NewController(f fetcher.Fetcher, view View, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  f,
		view:     view,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxPages returns the largest accepted page count
func (c *Controller) MaxPages() int {
	return c.maxPages
}

// State returns the state currently shown by the view
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error behind the current error state, if any
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateError {
		return nil
	}
	return c.lastErr
}

// Wait blocks until no request started by Submit is running
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Submit validates the page count, shows the loading indicator and starts the
// request in the background. Any request still in flight is cancelled and its
// result discarded. Invalid input is rendered as an error and returned.
func (c *Controller) Submit(ctx context.Context, pageCount string) error {
	pages, err := ParsePageCount(pageCount, c.maxPages)

	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.supersede()

	if err != nil {
		c.logger.Warn("rejected page count", "input", pageCount, "error", err)
		c.renderError(err)
		return err
	}

	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel

	c.state = StateLoading
	c.lastErr = nil
	c.view.ShowLoading()

	c.wg.Add(1)
	go c.run(reqCtx, cancel, gen, pages)

	return nil
}

// Render replaces the view with one element per item, in order.
// An empty list renders the empty state.
func (c *Controller) Render(items []models.DisplayItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.render(items)
}

// RenderEmpty replaces the view with the "no results" indicator
func (c *Controller) RenderEmpty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.renderEmpty()
}

// RenderError replaces the view with an error indicator for err
func (c *Controller) RenderError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.renderError(err)
}

// supersede invalidates the request in flight, if any, and returns the new generation.
// Callers hold c.mu.
func (c *Controller) supersede() uint64 {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return c.gen
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen uint64, pages int) {
	defer c.wg.Done()
	defer cancel()

	logger := c.logger.With("generation", gen, "pages", pages)
	logger.Debug("fetching giveaways")

	started := time.Now()
	items, err := c.fetcher.Fetch(ctx, pages)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		logger.Debug("discarding superseded response", "error", err)
		return
	}
	c.cancel = nil

	if err != nil {
		logger.Error("there was a problem with fetching the data", "error", err)
		c.renderError(err)
		return
	}

	logger.Info("fetched giveaways", "count", len(items), "duration_ms", time.Since(started).Milliseconds())
	c.render(items)
}

func (c *Controller) render(items []models.DisplayItem) {
	if len(items) == 0 {
		c.renderEmpty()
		return
	}
	// the view gets its own copy for this pass
	pass := make([]models.DisplayItem, len(items))
	copy(pass, items)

	c.state = StatePopulated
	c.lastErr = nil
	c.view.ShowItems(pass)
}

func (c *Controller) renderEmpty() {
	c.state = StateEmpty
	c.lastErr = nil
	c.view.ShowEmpty()
}

func (c *Controller) renderError(err error) {
	c.state = StateError
	c.lastErr = err
	c.view.ShowError(UserMessage(err))
}

// UserMessage turns an error into the short text shown to users
func UserMessage(err error) string {
	var pce *PageCountError
	var timeout interface{ Timeout() bool }
	switch {
	case errors.As(err, &pce):
		return fmt.Sprintf("Please enter a whole number of pages between 1 and %d.", pce.Max)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeout) && timeout.Timeout():
		return "The scraper took too long to respond. Try again later..."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, fetcher.ErrDecodeFailed):
		return "The scraper sent back something we could not read. Try again later..."
	default:
		return "Response came back with errors. Try again later..."
	}
}
