package refresh

import (
	"time"

	"github.com/umputun/tradescope/pkg/domain"
)

// Phase of the refresh state machine
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
)

// Mode tells how a refresh was triggered
type Mode string

const (
	ModeManual Mode = "manual"
	ModeSilent Mode = "silent"
)

// Outcome of a refresh request
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeDropped Outcome = "dropped" // another fetch was in flight
	OutcomeFailed  Outcome = "failed"
)

// LevelError is the level of refresh failure notifications
const LevelError = "error"

// Notification is a transient message, dismissed automatically at ExpiresAt
type Notification struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// View is an immutable snapshot of the dashboard state
type View struct {
	Phase         Phase          `json:"phase"`
	Mode          Mode           `json:"mode,omitempty"`
	AutoRefresh   bool           `json:"auto_refresh"`
	Loaded        bool           `json:"loaded"` // content is displayed
	Count         int            `json:"count"`
	Cards         []domain.Card  `json:"-"`
	Error         string         `json:"error,omitempty"` // blocking banner text
	Notifications []Notification `json:"notifications"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Now           time.Time      `json:"now"`
}

// Loading reports whether a fetch is in flight
func (v View) Loading() bool {
	return v.Phase == PhaseLoading
}

// SilentLoading reports a silent refresh in flight, shown with a subtle indicator over the content
func (v View) SilentLoading() bool {
	return v.Phase == PhaseLoading && v.Mode == ModeSilent
}

// Empty reports a successful load with no records for today
func (v View) Empty() bool {
	return v.Loaded && v.Count == 0
}
