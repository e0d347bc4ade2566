package models

// OperationKind identifies one of the six intent operations
type OperationKind string

const (
	OperationQuery     OperationKind = "query"
	OperationInsert    OperationKind = "insert"
	OperationUpdate    OperationKind = "update"
	OperationDelete    OperationKind = "delete"
	OperationAggregate OperationKind = "aggregate"
	OperationCompare   OperationKind = "compare"
)

// SupportedOperations lists every operation the dispatcher accepts,
// in the order they are documented to callers.
func SupportedOperations() []OperationKind {
	return []OperationKind{
		OperationQuery,
		OperationInsert,
		OperationUpdate,
		OperationDelete,
		OperationAggregate,
		OperationCompare,
	}
}

// IntentContext carries the caller identity attached to every intent.
// UserID is mandatory; every compiled predicate is scoped by it.
type IntentContext struct {
	UserID       string `json:"user_id"`
	UserTimezone string `json:"user_timezone,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// Intent is the structured request an agent or client hands to the engine.
// It is created per request, never persisted, and immutable once dispatched.
type Intent struct {
	Operation OperationKind          `json:"operation"`
	Params    map[string]interface{} `json:"params"`
	Context   IntentContext          `json:"context"`
}
