package recommend

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/umputun/tradescope/pkg/domain"
)

// sidePrefixRegex matches a leading "BUY:" or "SELL:" label
var sidePrefixRegex = regexp.MustCompile(`(?i)^(BUY|SELL):\s*`)

// rawRecommendation is the loosely typed element shape produced by the LLM prompt
type rawRecommendation struct {
	NewsReferenced any `json:"news_summary_referenced"`
	Segment        any `json:"news_summary_segment"`
	TradingIdea    any `json:"trading_idea"`
	Confidence     any `json:"confidence_on_trading_idea"`
}

// Normalize converts one array element into a recommendation. Missing or mistyped fields get defaults:
// segment MARKET_NEWS, confidence 0, empty strings. Elements that are not objects produce an
// all-default recommendation.
func Normalize(elem json.RawMessage) domain.Recommendation {
	var raw rawRecommendation
	_ = json.Unmarshal(elem, &raw) // non-object elements leave raw empty

	idea := stringValue(raw.TradingIdea)
	confidence := numberValue(raw.Confidence)
	return domain.Recommendation{
		Segment:         segmentValue(raw.Segment),
		Confidence:      confidence,
		TradingIdea:     idea,
		NewsReferenced:  stringValue(raw.NewsReferenced),
		Side:            SideOf(idea),
		ConfidenceClass: ClassifyConfidence(confidence),
		IdeaText:        IdeaText(idea),
	}
}

// SideOf detects the trade direction by a case-insensitive substring check, BUY wins over SELL
func SideOf(idea string) domain.Side {
	upper := strings.ToUpper(idea)
	switch {
	case strings.Contains(upper, "BUY"):
		return domain.SideBuy
	case strings.Contains(upper, "SELL"):
		return domain.SideSell
	default:
		return domain.SideTrade
	}
}

// ClassifyConfidence buckets confidence: >=7 high, >=4 medium, otherwise low
func ClassifyConfidence(confidence float64) domain.ConfidenceClass {
	switch {
	case confidence >= 7:
		return domain.ConfidenceHigh
	case confidence >= 4:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// IdeaText strips a leading BUY:/SELL: label for display
func IdeaText(idea string) string {
	return strings.TrimSpace(sidePrefixRegex.ReplaceAllString(idea, ""))
}

// ConfidenceWidth returns the confidence bar width in percent, clamped to 0-100
func ConfidenceWidth(confidence float64) float64 {
	return min(max(confidence*10, 0), 100)
}

// segmentValue maps the segment field, absent or falsy values (null, "", 0, false) default to market
// news and any other non-string value is unknown
func segmentValue(v any) domain.NewsSegment {
	s, ok := v.(string)
	if !ok {
		switch v {
		case nil, false, float64(0):
			return domain.SegmentMarket
		default:
			return domain.SegmentUnknown
		}
	}
	switch domain.NewsSegment(s) {
	case "", domain.SegmentMarket:
		return domain.SegmentMarket
	case domain.SegmentPolitical:
		return domain.SegmentPolitical
	default:
		return domain.SegmentUnknown
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// numberValue accepts JSON numbers and numeric strings
func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
