package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-pkgz/rest"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/refresh"
)

// viewResponse is the JSON form of the dashboard view
type viewResponse struct {
	refresh.View
	Loading       bool       `json:"loading"`
	SilentLoading bool       `json:"silent_loading"`
	Cards         []cardJSON `json:"cards"`
}

type cardJSON struct {
	Record         int                 `json:"record"`
	Index          int                 `json:"index,omitempty"`
	Recommendation *recommendationJSON `json:"recommendation,omitempty"`
	Raw            *recordJSON         `json:"raw,omitempty"`
}

type recommendationJSON struct {
	Segment         domain.NewsSegment     `json:"news_summary_segment"`
	Confidence      float64                `json:"confidence_on_trading_idea"`
	TradingIdea     string                 `json:"trading_idea"`
	NewsReferenced  string                 `json:"news_summary_referenced"`
	Side            domain.Side            `json:"side"`
	ConfidenceClass domain.ConfidenceClass `json:"confidence_class"`
	IdeaText        string                 `json:"idea_text"`
}

type recordJSON struct {
	ID             string     `json:"_id"`
	CreatedAt      *time.Time `json:"created_at"`
	Prompt         string     `json:"prompt"`
	PromptResponse string     `json:"prompt_response"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	v := s.ctrl.View()
	rest.RenderJSON(w, rest.JSON{
		"status":       "ok",
		"version":      s.version,
		"time":         time.Now().UTC(),
		"phase":        v.Phase,
		"auto_refresh": v.AutoRefresh,
		"updated_at":   v.UpdatedAt,
	})
}

// viewHandler returns the current dashboard view
func (s *Server) viewHandler(w http.ResponseWriter, _ *http.Request) {
	rest.RenderJSON(w, makeViewResponse(s.ctrl.View()))
}

// apiRefreshHandler runs a manual refresh and returns its outcome with the resulting view
func (s *Server) apiRefreshHandler(w http.ResponseWriter, r *http.Request) {
	outcome := s.ctrl.ManualRefresh(context.WithoutCancel(r.Context()))
	rest.RenderJSON(w, rest.JSON{"outcome": outcome, "view": makeViewResponse(s.ctrl.View())})
}

// apiAutoRefreshHandler toggles auto-refresh and returns the new state
func (s *Server) apiAutoRefreshHandler(w http.ResponseWriter, _ *http.Request) {
	rest.RenderJSON(w, rest.JSON{"auto_refresh": s.ctrl.ToggleAutoRefresh()})
}

func makeViewResponse(v refresh.View) viewResponse {
	res := viewResponse{View: v, Loading: v.Loading(), SilentLoading: v.SilentLoading(), Cards: make([]cardJSON, 0, len(v.Cards))}
	for _, c := range v.Cards {
		card := cardJSON{Record: c.RecordIndex, Index: c.Index}
		if rec := c.Recommendation; rec != nil {
			card.Recommendation = &recommendationJSON{
				Segment:         rec.Segment,
				Confidence:      rec.Confidence,
				TradingIdea:     rec.TradingIdea,
				NewsReferenced:  rec.NewsReferenced,
				Side:            rec.Side,
				ConfidenceClass: rec.ConfidenceClass,
				IdeaText:        rec.IdeaText,
			}
		}
		if raw := c.Record; raw != nil {
			card.Raw = &recordJSON{ID: raw.ID, CreatedAt: raw.CreatedAt, Prompt: raw.Prompt, PromptResponse: raw.PromptResponse}
		}
		res.Cards = append(res.Cards, card)
	}
	return res
}
