package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/umputun/tradescope/pkg/config"
	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/refresh"
	"github.com/umputun/tradescope/server/mocks"
)

func testConfig(listen string) *mocks.ConfigProviderMock {
	cfg := config.Default()
	cfg.Server.Listen = listen
	cfg.Server.ViewPoll = 7 * time.Second
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) { return cfg.Server.Listen, cfg.Server.Timeout },
		GetFullConfigFunc:   func() *config.Config { return cfg },
	}
}

func staticController(v refresh.View) *mocks.ControllerMock {
	return &mocks.ControllerMock{
		ViewFunc:              func() refresh.View { return v },
		ManualRefreshFunc:     func(ctx context.Context) refresh.Outcome { return refresh.OutcomeApplied },
		ToggleAutoRefreshFunc: func() bool { return true },
	}
}

// sampleView has one recommendation card and one raw record card
func sampleView() refresh.View {
	created := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	return refresh.View{
		Phase:  refresh.PhaseIdle,
		Loaded: true,
		Count:  2,
		Cards: []domain.Card{
			{RecordIndex: 0, Index: 1, Recommendation: &domain.Recommendation{
				Segment:         domain.SegmentMarket,
				Confidence:      8,
				TradingIdea:     "BUY: XYZ <b>now</b>",
				NewsReferenced:  "Q3 earnings beat",
				Side:            domain.SideBuy,
				ConfidenceClass: domain.ConfidenceHigh,
				IdeaText:        "XYZ <b>now</b>",
			}},
			{RecordIndex: 1, Record: &domain.ResponseRecord{
				ID:             "rec-2",
				CreatedAt:      &created,
				Prompt:         "summarize <news>",
				PromptResponse: `{"a":1}`,
			}},
		},
		UpdatedAt: created,
		Now:       time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC),
	}
}

func TestServer_New(t *testing.T) {
	srv := New(testConfig(":8080"), staticController(refresh.View{}), "1.0.0", false)
	assert.NotNil(t, srv)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
	require.NotNil(t, srv.templates)
	for _, name := range []string{templateDashboard, templateContent, templateToggle, "recommendation-card", "record-card"} {
		assert.NotNil(t, srv.templates.Lookup(name), name)
	}
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	srv := New(testConfig(fmt.Sprintf("127.0.0.1:%d", port)), staticController(refresh.View{}), "1.0.0", true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/ping", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test request
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_statusHandler(t *testing.T) {
	v := sampleView()
	v.AutoRefresh = true
	srv := New(testConfig(":8080"), staticController(v), "1.2.3", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "tradescope", w.Header().Get("App-Name"))

	var status map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "1.2.3", status["version"])
	assert.Equal(t, "idle", status["phase"])
	assert.Equal(t, true, status["auto_refresh"])
	assert.Contains(t, status, "time")
}

func TestServer_viewHandler(t *testing.T) {
	srv := New(testConfig(":8080"), staticController(sampleView()), "test", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Phase   string `json:"phase"`
		Loaded  bool   `json:"loaded"`
		Loading bool   `json:"loading"`
		Count   int    `json:"count"`
		Cards   []struct {
			Record         int `json:"record"`
			Index          int `json:"index"`
			Recommendation *struct {
				Segment    string  `json:"news_summary_segment"`
				Confidence float64 `json:"confidence_on_trading_idea"`
				Side       string  `json:"side"`
				Class      string  `json:"confidence_class"`
				IdeaText   string  `json:"idea_text"`
			} `json:"recommendation"`
			Raw *struct {
				ID string `json:"_id"`
			} `json:"raw"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Phase)
	assert.True(t, resp.Loaded)
	assert.False(t, resp.Loading)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Cards, 2)

	require.NotNil(t, resp.Cards[0].Recommendation)
	assert.Nil(t, resp.Cards[0].Raw)
	assert.Equal(t, 1, resp.Cards[0].Index)
	assert.Equal(t, "MARKET_NEWS", resp.Cards[0].Recommendation.Segment)
	assert.InDelta(t, 8.0, resp.Cards[0].Recommendation.Confidence, 0.001)
	assert.Equal(t, "BUY", resp.Cards[0].Recommendation.Side)
	assert.Equal(t, "high", resp.Cards[0].Recommendation.Class)

	assert.Nil(t, resp.Cards[1].Recommendation)
	require.NotNil(t, resp.Cards[1].Raw)
	assert.Equal(t, 1, resp.Cards[1].Record)
	assert.Equal(t, "rec-2", resp.Cards[1].Raw.ID)
}

func TestServer_apiRefreshHandler(t *testing.T) {
	ctrl := staticController(sampleView())
	ctrl.ManualRefreshFunc = func(ctx context.Context) refresh.Outcome { return refresh.OutcomeDropped }
	srv := New(testConfig(":8080"), ctrl, "test", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Outcome string `json:"outcome"`
		View    struct {
			Count int `json:"count"`
		} `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dropped", resp.Outcome)
	assert.Equal(t, 2, resp.View.Count)
	assert.Len(t, ctrl.ManualRefreshCalls(), 1)
}

func TestServer_apiAutoRefreshHandler(t *testing.T) {
	ctrl := staticController(refresh.View{})
	srv := New(testConfig(":8080"), ctrl, "test", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auto-refresh", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"auto_refresh":true}`, w.Body.String())
	assert.Len(t, ctrl.ToggleAutoRefreshCalls(), 1)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := New(testConfig(":8080"), staticController(refresh.View{}), "test", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/refresh", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// findAll returns all element nodes having the css class
func findAll(n *html.Node, class string) []*html.Node {
	var res []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "class" && containsWord(a.Val, class) {
					res = append(res, n)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return res
}

// findTag returns all elements with the tag name
func findTag(n *html.Node, tag string) []*html.Node {
	var res []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		res = append(res, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, findTag(c, tag)...)
	}
	return res
}

// renderNode serializes a node back to markup
func renderNode(t *testing.T, n *html.Node) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, html.Render(&sb, n))
	return sb.String()
}

// findID returns the element with the given id or nil
func findID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findID(c, id); res != nil {
			return res
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text returns the collapsed text content of a node
func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if f == word {
			return true
		}
	}
	return false
}

func parseHTML(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}
