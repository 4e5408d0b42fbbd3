package recommend

import (
	"bytes"
	"encoding/json"

	"github.com/umputun/tradescope/pkg/domain"
)

// Builder converts upstream records into dashboard cards
type Builder struct {
	parser *Parser
}

// NewBuilder makes a builder backed by the given parser, nil means the default parser
func NewBuilder(parser *Parser) *Builder {
	if parser == nil {
		parser = NewParser()
	}
	return &Builder{parser: parser}
}

// Build returns cards in record order. A record with structured recommendations yields one card per
// recommendation, otherwise a single card showing the raw record.
func (b *Builder) Build(records []domain.ResponseRecord) []domain.Card {
	cards := make([]domain.Card, 0, len(records))
	for i := range records {
		recs := b.parser.Parse(records[i].PromptResponse)
		if len(recs) == 0 {
			rec := records[i]
			cards = append(cards, domain.Card{RecordIndex: i, Record: &rec})
			continue
		}
		for j := range recs {
			cards = append(cards, domain.Card{RecordIndex: i, Index: j + 1, Recommendation: &recs[j]})
		}
	}
	return cards
}

// FormatResponse pretty-prints text with a 2-space indent when it is valid JSON,
// anything else is returned as is
func FormatResponse(text string) string {
	if !json.Valid([]byte(text)) {
		return text
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return text
	}
	return buf.String()
}
