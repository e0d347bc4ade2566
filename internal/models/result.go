package models

// ResultMetadata describes how an intent was executed
type ResultMetadata struct {
	Operation       string `json:"operation"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Timestamp       string `json:"timestamp"`
	RequestID       string `json:"request_id,omitempty"`
}

// ResultError is the normalized failure body. Details carries the full list
// of field violations for validation failures, or nil.
type ResultError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details"`
	Timestamp string      `json:"timestamp"`
}

// Result is the envelope returned for every dispatched intent. It is either
// a success (Data + Metadata set) or a failure (Error set), never both.
type Result struct {
	Success  bool            `json:"success"`
	Data     interface{}     `json:"data,omitempty"`
	Metadata *ResultMetadata `json:"metadata,omitempty"`
	Error    *ResultError    `json:"error,omitempty"`
}
