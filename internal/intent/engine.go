package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"ledgermind/internal/logging"
	"ledgermind/internal/models"
)

// Engine is the intent dispatcher: it validates the envelope, sanitizes
// params, routes to the operation handler, times execution and normalizes
// the success/error shape. Engines hold no per-request state; any number of
// intents may be dispatched concurrently.
type Engine struct {
	store    RecordStore
	periods  *PeriodResolver
	metrics  *Metrics
	handlers map[models.OperationKind]handlerFunc
}

// Request is the validated, sanitized view of one intent a handler receives
type Request struct {
	Params   map[string]interface{}
	UserID   string
	Timezone string
	Currency string
}

type handlerFunc func(ctx context.Context, req *Request) (interface{}, error)

// NewEngine creates an engine over the given store. metrics may be nil
// (tests run without a registry).
func NewEngine(store RecordStore, metrics *Metrics) *Engine {
	e := &Engine{
		store:   store,
		periods: NewPeriodResolver(store),
		metrics: metrics,
	}
	e.handlers = map[models.OperationKind]handlerFunc{
		models.OperationQuery:     e.handleQuery,
		models.OperationInsert:    e.handleInsert,
		models.OperationUpdate:    e.handleUpdate,
		models.OperationDelete:    e.handleDelete,
		models.OperationAggregate: e.handleAggregate,
		models.OperationCompare:   e.handleCompare,
	}
	return e
}

// ParseIntent validates a raw decoded envelope into an Intent. It rejects a
// missing or non-string operation, a non-object params and a missing
// context.user_id before any dispatch happens.
func ParseIntent(raw map[string]interface{}) (*models.Intent, *Error) {
	opRaw, present := raw["operation"]
	if !present {
		return nil, NewValidationError("operation is required", nil)
	}
	op, ok := opRaw.(string)
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("operation must be a string, got %T", opRaw), nil)
	}

	params := map[string]interface{}{}
	if paramsRaw, present := raw["params"]; present && paramsRaw != nil {
		params, ok = paramsRaw.(map[string]interface{})
		if !ok {
			return nil, NewValidationError(fmt.Sprintf("params must be an object, got %T", paramsRaw), nil)
		}
	}

	intentCtx := models.IntentContext{}
	if ctxMap, ok := raw["context"].(map[string]interface{}); ok {
		intentCtx.UserID = getString(ctxMap, "user_id", "")
		intentCtx.UserTimezone = getString(ctxMap, "user_timezone", "")
		intentCtx.Currency = getString(ctxMap, "currency", "")
	}
	if intentCtx.UserID == "" {
		return nil, NewValidationError("context.user_id is required", nil)
	}

	return &models.Intent{
		Operation: models.OperationKind(op),
		Params:    params,
		Context:   intentCtx,
	}, nil
}

// Dispatch executes one intent and always returns a normalized result
// envelope; no handler error or panic escapes past it.
func (e *Engine) Dispatch(ctx context.Context, it *models.Intent) *models.Result {
	started := time.Now()
	requestID := uuid.New().String()
	operation := string(it.Operation)

	handler, known := e.handlers[it.Operation]
	if !known {
		return e.failure(operation, requestID, started, NewValidationError(
			fmt.Sprintf("unsupported operation %q, supported operations: %s",
				operation, supportedOperationList()), nil))
	}
	if it.Context.UserID == "" {
		return e.failure(operation, requestID, started,
			NewValidationError("context.user_id is required", nil))
	}
	if verr := ValidateSafe(it.Context.UserID); verr != nil {
		return e.failure(operation, requestID, started, verr)
	}

	params, _ := SanitizeTree(it.Params).(map[string]interface{})
	if params == nil {
		params = map[string]interface{}{}
	}
	req := &Request{
		Params:   params,
		UserID:   it.Context.UserID,
		Timezone: it.Context.UserTimezone,
		Currency: it.Context.Currency,
	}
	logger := logging.WithIntent(requestID, operation, req.UserID)

	var data interface{}
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &Error{Code: ErrCodeInternal, Message: fmt.Sprintf("handler panic: %v", r)}
			}
		}()
		data, err = handler(ctx, req)
	}()

	elapsed := time.Since(started)
	if err != nil {
		engineErr := Classify(err)
		logger.Warn("intent failed",
			"code", string(engineErr.Code),
			"error", engineErr.Message,
			"duration_ms", elapsed.Milliseconds())
		if e.metrics != nil {
			e.metrics.RecordIntent(operation, elapsed.Seconds())
		}
		// failure() is the single place errors are counted
		return e.failure(operation, requestID, started, engineErr)
	}

	logger.Info("intent completed", "duration_ms", elapsed.Milliseconds())
	if e.metrics != nil {
		e.metrics.RecordIntent(operation, elapsed.Seconds())
	}

	return &models.Result{
		Success: true,
		Data:    data,
		Metadata: &models.ResultMetadata{
			Operation:       operation,
			ExecutionTimeMs: elapsed.Milliseconds(),
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
			RequestID:       requestID,
		},
	}
}

func (e *Engine) failure(operation, requestID string, started time.Time, err *Error) *models.Result {
	if e.metrics != nil {
		e.metrics.RecordIntentError(operation, string(err.Code))
	}
	return &models.Result{
		Success: false,
		Error: &models.ResultError{
			Code:      string(err.Code),
			Message:   err.Message,
			Details:   err.Details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func supportedOperationList() string {
	ops := models.SupportedOperations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}

// gatherFilters merges the params-level period shorthand into the filter
// map. Callers may put the named period either at params.period or at
// filters.period; the filter-map entry wins when both are present.
func gatherFilters(req *Request) map[string]interface{} {
	filters := map[string]interface{}{}
	for k, v := range getMap(req.Params, "filters") {
		filters[k] = v
	}
	if p, present := req.Params["period"]; present && p != nil {
		if _, exists := filters["period"]; !exists {
			filters["period"] = p
		}
	}
	return filters
}

// buildPredicate resolves any named period in the filter map, compiles the
// map under the given logic, applies the optional exclude map as a negated
// clause and scopes the result by owner. Every handler that reads or writes
// through a filter goes through here, so no predicate can leave the engine
// unscoped.
func (e *Engine) buildPredicate(ctx context.Context, req *Request, filters map[string]interface{}, logic string, exclude map[string]interface{}) (bson.M, error) {
	if name := periodName(filters["period"]); name != "" {
		period, err := e.periods.Resolve(ctx, name, req.Timezone, req.UserID)
		if err != nil {
			return nil, err
		}
		delete(filters, "period")
		filters["date_range"] = period
	} else {
		delete(filters, "period")
	}

	predicate, cerr := CompileFilters(filters, logic)
	if cerr != nil {
		return nil, cerr
	}

	if len(exclude) > 0 {
		predicate, cerr = AddNotFilter(predicate, exclude)
		if cerr != nil {
			return nil, cerr
		}
	}

	return scopeByOwner(predicate, req.UserID), nil
}

// periodName extracts the symbolic name from either a plain string or a
// {named_period: "..."} object
func periodName(v interface{}) string {
	switch p := v.(type) {
	case string:
		return p
	case map[string]interface{}:
		return getString(p, "named_period", "")
	}
	return ""
}
