package archetypes

import "encoding/json"

// Event is the Lambda payload.
type Event struct {
	Season int `json:"season"` // optional; falls back to SEASON
}

type Response struct {
	OK       bool           `json:"ok"`
	Season   int            `json:"season"`
	Features map[string]int `json:"features"` // rows per feature table
	Combined map[string]int `json:"combined"` // combined rows per offensive group
	Parquet  string         `json:"parquet,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// Raw keeps the handler signature independent of the event type.
type Raw = json.RawMessage
