package server

import (
	"html/template"
	"strconv"
	"time"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/recommend"
)

const (
	dateLayout       = "Monday, January 2, 2006"
	recordTimeLayout = "Jan 02, 2006, 03:04:05 PM"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"confidenceWidth": recommend.ConfidenceWidth,
		"confidence":      formatConfidence,
		"segmentClass":    segmentClass,
		"segmentLabel":    segmentLabel,
		"sideClass":       sideClass,
		"recordTime":      formatRecordTime,
		"formatResponse":  recommend.FormatResponse,
		"formatDate":      func(t time.Time) string { return t.Format(dateLayout) },
		"formatClock":     func(t time.Time) string { return t.Format("15:04:05") },
		"pollSeconds":     func(d time.Duration) int { return max(int(d.Seconds()), 1) },
	}
}

// formatConfidence renders a score without trailing zeros, 8 -> "8", 7.5 -> "7.5"
func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// segmentClass is the badge css class, anything but market news renders as political
func segmentClass(s domain.NewsSegment) string {
	if s == domain.SegmentMarket {
		return "market"
	}
	return "political"
}

func segmentLabel(s domain.NewsSegment) string {
	if s == domain.SegmentMarket {
		return "Market News"
	}
	return "Political News"
}

func sideClass(s domain.Side) string {
	switch s {
	case domain.SideBuy:
		return "buy"
	case domain.SideSell:
		return "sell"
	default:
		return ""
	}
}

func formatRecordTime(t *time.Time) string {
	if t == nil {
		return "Unknown time"
	}
	return t.Format(recordTimeLayout)
}
