// Package refresh owns the dashboard refresh state: manual and silent refreshes, the auto-refresh
// timer and the single in-flight fetch guard.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/upstream"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/builder.go -pkg mocks -skip-ensure -fmt goimports . Builder

// autoFailureMessage is the notification shown when a silent refresh fails over existing content
const autoFailureMessage = "Auto-refresh failed. Click Refresh to try again."

// Fetcher retrieves today's records from upstream
type Fetcher interface {
	FetchToday(ctx context.Context) (*domain.TodayResponses, error)
}

// Builder turns records into dashboard cards
type Builder interface {
	Build(records []domain.ResponseRecord) []domain.Card
}

// Config holds controller parameters
type Config struct {
	Interval    time.Duration // auto-refresh period
	NotifyTTL   time.Duration // how long a notification stays visible
	LoadOnStart bool          // run one silent refresh on Start
	AutoStart   bool          // enable auto-refresh on Start
	Now         func() time.Time
}

// Controller is the refresh state machine of a single dashboard instance.
// At most one fetch is in flight, refresh requests arriving while loading are dropped.
type Controller struct {
	fetcher     Fetcher
	builder     Builder
	interval    time.Duration
	notifyTTL   time.Duration
	loadOnStart bool
	autoStart   bool
	now         func() time.Time

	mu          sync.Mutex
	st          state
	autoRefresh bool
	stopTimer   context.CancelFunc
	baseCtx     context.Context
	cancelBase  context.CancelFunc
	stopped     bool
	wg          sync.WaitGroup
}

// state is the mutable part shown to the user
type state struct {
	phase         Phase
	mode          Mode
	loaded        bool
	count         int
	cards         []domain.Card
	errMsg        string
	notifications []Notification
	updatedAt     time.Time
}

// New makes a controller. Zero durations get defaults: 30s interval, 5s notification ttl.
func New(fetcher Fetcher, builder Builder, cfg Config) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.NotifyTTL <= 0 {
		cfg.NotifyTTL = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		fetcher:     fetcher,
		builder:     builder,
		interval:    cfg.Interval,
		notifyTTL:   cfg.NotifyTTL,
		loadOnStart: cfg.LoadOnStart,
		autoStart:   cfg.AutoStart,
		now:         cfg.Now,
		st:          state{phase: PhaseIdle},
		baseCtx:     context.Background(),
	}
}

// Start binds the controller to ctx and runs the configured initial load and auto-refresh
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.baseCtx, c.cancelBase = context.WithCancel(ctx)
	baseCtx := c.baseCtx
	c.mu.Unlock()

	lgr.Printf("[INFO] refresh controller started, interval %v, auto-refresh %v", c.interval, c.autoStart)

	if c.autoStart {
		c.SetAutoRefresh(true) // enabling runs the immediate refresh
		return
	}
	if c.loadOnStart {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.SilentRefresh(baseCtx)
		}()
	}
}

// Stop cancels the auto-refresh timer and waits for background refreshes to finish
func (c *Controller) Stop() {
	c.mu.Lock()
	c.setAutoRefreshLocked(false)
	c.stopped = true
	if c.cancelBase != nil {
		c.cancelBase()
	}
	c.mu.Unlock()
	c.wg.Wait()
	lgr.Printf("[INFO] refresh controller stopped")
}

// Run starts the controller and blocks until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	c.Start(ctx)
	<-ctx.Done()
	c.Stop()
	return nil
}

// ManualRefresh is a user initiated refresh: clears content, surfaces failures as an error banner
func (c *Controller) ManualRefresh(ctx context.Context) Outcome {
	return c.refresh(ctx, ModeManual)
}

// SilentRefresh is a timer initiated refresh: keeps content while loading, a failure over existing
// content becomes a short-lived notification
func (c *Controller) SilentRefresh(ctx context.Context) Outcome {
	return c.refresh(ctx, ModeSilent)
}

// ToggleAutoRefresh flips auto-refresh and returns the new state
func (c *Controller) ToggleAutoRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	on := !c.autoRefresh
	c.setAutoRefreshLocked(on)
	return on
}

// SetAutoRefresh enables or disables auto-refresh, no-op if already in that state
func (c *Controller) SetAutoRefresh(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setAutoRefreshLocked(on)
}

// AutoRefresh reports whether auto-refresh is on
func (c *Controller) AutoRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoRefresh
}

// setAutoRefreshLocked must be called with c.mu held. Enabling runs one immediate silent refresh and
// starts the ticker. Disabling stops the ticker only, an in-flight fetch completes and is applied.
func (c *Controller) setAutoRefreshLocked(on bool) {
	if on == c.autoRefresh || (on && c.stopped) {
		return
	}
	c.autoRefresh = on

	if !on {
		if c.stopTimer != nil {
			c.stopTimer()
			c.stopTimer = nil
		}
		lgr.Printf("[INFO] auto-refresh disabled")
		return
	}

	fetchCtx := c.baseCtx
	timerCtx, cancel := context.WithCancel(fetchCtx)
	c.stopTimer = cancel

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.SilentRefresh(fetchCtx)
	}()
	go c.autoRefreshLoop(timerCtx, fetchCtx)
	lgr.Printf("[INFO] auto-refresh enabled, every %v", c.interval)
}

// autoRefreshLoop runs silent refreshes on a fixed interval until timerCtx is canceled.
// Refreshes use fetchCtx so stopping the timer doesn't abort a fetch in progress.
func (c *Controller) autoRefreshLoop(timerCtx, fetchCtx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-timerCtx.Done():
			return
		case <-ticker.C:
			if timerCtx.Err() != nil {
				return
			}
			c.SilentRefresh(fetchCtx)
		}
	}
}

// refresh performs one guarded fetch-and-apply cycle
func (c *Controller) refresh(ctx context.Context, mode Mode) Outcome {
	c.mu.Lock()
	if c.st.phase == PhaseLoading {
		c.mu.Unlock()
		lgr.Printf("[DEBUG] request already in progress, skipping %s refresh", mode)
		return OutcomeDropped
	}
	c.st.phase = PhaseLoading
	c.st.mode = mode
	c.st.errMsg = ""
	if mode == ModeManual {
		c.st.cards = nil
		c.st.loaded = false
	}
	c.mu.Unlock()

	resp, err := c.fetcher.FetchToday(ctx)
	if err == nil && resp == nil {
		resp = &domain.TodayResponses{}
	}
	var cards []domain.Card
	if err == nil {
		cards = c.builder.Build(resp.Records)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		msg := upstream.UserMessage(err)
		if mode == ModeManual || !c.st.loaded {
			lgr.Printf("[WARN] %s refresh failed: %v", mode, err)
			c.st.phase = PhaseError
			c.st.errMsg = "Error: " + msg
			return OutcomeFailed
		}
		lgr.Printf("[WARN] auto-refresh error: %v", err)
		c.st.phase = PhaseIdle
		c.st.notifications = append(c.liveNotificationsLocked(), Notification{
			Level:     LevelError,
			Message:   autoFailureMessage,
			ExpiresAt: c.now().Add(c.notifyTTL),
		})
		return OutcomeFailed
	}

	c.st.phase = PhaseIdle
	c.st.loaded = true
	c.st.count = resp.Count
	c.st.cards = cards
	c.st.updatedAt = c.now()
	lgr.Printf("[DEBUG] %s refresh applied, %d records, %d cards", mode, resp.Count, len(cards))
	return OutcomeApplied
}

// View returns a snapshot of the current dashboard state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.st.notifications = c.liveNotificationsLocked()
	notifications := make([]Notification, len(c.st.notifications))
	copy(notifications, c.st.notifications)

	return View{
		Phase:         c.st.phase,
		Mode:          c.st.mode,
		AutoRefresh:   c.autoRefresh,
		Loaded:        c.st.loaded,
		Count:         c.st.count,
		Cards:         c.st.cards,
		Error:         c.st.errMsg,
		Notifications: notifications,
		UpdatedAt:     c.st.updatedAt,
		Now:           c.now(),
	}
}

// liveNotificationsLocked drops expired notifications, must be called with c.mu held
func (c *Controller) liveNotificationsLocked() []Notification {
	now := c.now()
	live := c.st.notifications[:0:0]
	for _, n := range c.st.notifications {
		if now.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}
	return live
}
