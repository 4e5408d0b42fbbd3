package domain

import "time"

// ResponseRecord represents one stored LLM call as returned by the upstream API
type ResponseRecord struct {
	ID             string
	CreatedAt      *time.Time // nil when upstream has no usable timestamp
	UpdatedAt      *time.Time
	Prompt         string
	PromptResponse string
}

// TodayResponses is the decoded body of the "today" endpoint
type TodayResponses struct {
	Count   int
	Records []ResponseRecord
}
