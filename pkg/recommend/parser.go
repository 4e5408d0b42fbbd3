// Package recommend extracts structured trading recommendations from loosely formatted LLM output.
package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
)

var (
	// fencedArrayRegex matches a markdown code fence with optional json tag around an array
	fencedArrayRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	// embeddedArrayRegex matches the first "[" through the last "]" of the text
	embeddedArrayRegex = regexp.MustCompile(`(?s)\[.*\]`)
)

// errNoMatch tells the chain to move to the next strategy
var errNoMatch = errors.New("no match")

// attempt holds what earlier strategies learned about the text
type attempt struct {
	text        string
	invalidJSON bool // whole text failed to decode as JSON
}

// strategy tries to extract array elements from the text. It returns errNoMatch to pass the text
// on to the next strategy, any other error stops the chain.
type strategy struct {
	name    string
	extract func(a *attempt) ([]json.RawMessage, error)
}

// Parser turns a response text into recommendations using an ordered list of strategies,
// the first strategy that produces elements wins
type Parser struct {
	strategies []strategy
}

// NewParser makes a parser with the standard strategy chain: whole-text JSON, fenced block,
// embedded array
func NewParser() *Parser {
	return &Parser{strategies: []strategy{
		{name: "whole", extract: wholeText},
		{name: "fenced", extract: fencedBlock},
		{name: "embedded", extract: embeddedArray},
	}}
}

// Parse returns the recommendations found in text, or nil if the text is not a structured
// recommendation list. Failures are logged and never returned.
func (p *Parser) Parse(text string) []domain.Recommendation {
	if text == "" {
		return nil
	}

	a := &attempt{text: text}
	for _, s := range p.strategies {
		elems, err := s.extract(a)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			lgr.Printf("[WARN] failed to parse recommendations with %s strategy: %v", s.name, err)
			return nil
		}
		if len(elems) == 0 {
			return nil
		}
		lgr.Printf("[DEBUG] %s strategy extracted %d recommendations", s.name, len(elems))
		recs := make([]domain.Recommendation, 0, len(elems))
		for _, e := range elems {
			recs = append(recs, Normalize(e))
		}
		return recs
	}
	return nil
}

// wholeText decodes the entire text, only a non-empty array is accepted
func wholeText(a *attempt) ([]json.RawMessage, error) {
	var v any
	if err := json.Unmarshal([]byte(a.text), &v); err != nil {
		a.invalidJSON = true
		return nil, errNoMatch
	}
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, errNoMatch
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(a.text), &elems); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	return elems, nil
}

// fencedBlock decodes the array inside a ```json ... ``` block. A malformed array inside a matched
// fence is an error, there is no partial recovery.
func fencedBlock(a *attempt) ([]json.RawMessage, error) {
	m := fencedArrayRegex.FindStringSubmatch(a.text)
	if m == nil {
		return nil, errNoMatch
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(m[1]), &elems); err != nil {
		return nil, fmt.Errorf("decode fenced array: %w", err)
	}
	return elems, nil
}

// embeddedArray decodes the first greedy [ ... ] substring. Runs only when the whole text was not JSON.
func embeddedArray(a *attempt) ([]json.RawMessage, error) {
	if !a.invalidJSON {
		return nil, errNoMatch
	}
	m := embeddedArrayRegex.FindString(a.text)
	if m == "" {
		return nil, errNoMatch
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(m), &elems); err != nil {
		return nil, fmt.Errorf("decode embedded array: %w", err)
	}
	return elems, nil
}
