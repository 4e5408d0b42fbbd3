package domain

// NewsSegment identifies which news stream a recommendation was derived from
type NewsSegment string

const (
	SegmentMarket    NewsSegment = "MARKET_NEWS"
	SegmentPolitical NewsSegment = "POLITICAL_NEWS"
	SegmentUnknown   NewsSegment = "UNKNOWN"
)

// Side is the trade direction label shown on a card
type Side string

const (
	SideBuy   Side = "BUY"
	SideSell  Side = "SELL"
	SideTrade Side = "TRADE"
)

// ConfidenceClass buckets a 0-10 confidence score
type ConfidenceClass string

const (
	ConfidenceLow    ConfidenceClass = "low"
	ConfidenceMedium ConfidenceClass = "medium"
	ConfidenceHigh   ConfidenceClass = "high"
)

// Recommendation is a single trading suggestion extracted from a model response.
// Raw fields carry the normalized upstream values, derived fields are filled by the parser.
type Recommendation struct {
	Segment        NewsSegment
	Confidence     float64
	TradingIdea    string
	NewsReferenced string

	Side            Side
	ConfidenceClass ConfidenceClass
	IdeaText        string // trading idea without the BUY:/SELL: prefix
}

// Card is one renderable dashboard entry. Exactly one of Recommendation and Record is set:
// Record is used when the response text had no structured recommendations.
type Card struct {
	RecordIndex    int
	Index          int // 1-based position of the recommendation within its record
	Recommendation *Recommendation
	Record         *ResponseRecord
}

// IsRecommendation reports whether the card shows a parsed recommendation
func (c Card) IsRecommendation() bool {
	return c.Recommendation != nil
}
