package intent

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"ledgermind/internal/models"
)

// protectedFields can never be written through an update intent
var protectedFields = []string{"id", "_id", "user_id", "created_at"}

// handleUpdate modifies one record by id or many records by filter. The
// updates payload is validated before any store access: protected fields are
// rejected outright and amount/date/type values must pass the same domain
// bounds as an insert.
func (e *Engine) handleUpdate(ctx context.Context, req *Request) (interface{}, error) {
	updates := getMap(req.Params, "updates")
	if len(updates) == 0 {
		return nil, NewValidationError("updates must be a non-empty object", nil)
	}

	if err := validateUpdatePayload(updates); err != nil {
		return nil, err
	}

	setDoc := bson.M{}
	for k, v := range updates {
		if k == "date" {
			parsed, _ := parseDate(v)
			setDoc[k] = parsed
			continue
		}
		setDoc[k] = v
	}
	setDoc["updated_at"] = time.Now()

	// Id-targeted update
	if id := getString(req.Params, "id", ""); id != "" {
		matched, modified, err := e.store.UpdateOne(ctx, id, req.UserID, setDoc)
		if err != nil {
			return nil, err
		}
		if matched == 0 {
			return nil, NewNotFoundError(fmt.Sprintf("no transaction with id %s", id))
		}
		return map[string]interface{}{
			"matched_count":  matched,
			"modified_count": modified,
		}, nil
	}

	// Filter-targeted bulk update. An empty filter map would touch every
	// record the caller owns, so it is rejected.
	filters := gatherFilters(req)
	if len(filters) == 0 {
		return nil, NewValidationError("update requires an id or a non-empty filter map", nil)
	}

	predicate, err := e.buildPredicate(ctx, req, filters,
		getString(req.Params, "logic", "AND"), nil)
	if err != nil {
		return nil, err
	}

	matched, modified, err := e.store.UpdateMany(ctx, predicate, setDoc)
	if err != nil {
		return nil, err
	}

	// Counts are reported verbatim, even when modified < matched
	return map[string]interface{}{
		"matched_count":  matched,
		"modified_count": modified,
	}, nil
}

// validateUpdatePayload rejects protected fields and enforces domain bounds
// on any amount, date or type present in the updates map. All violations are
// reported together.
func validateUpdatePayload(updates map[string]interface{}) *Error {
	var violations []FieldError

	for _, field := range protectedFields {
		if _, present := updates[field]; present {
			violations = append(violations, FieldError{field, "is protected and cannot be updated"})
		}
	}

	if amount, present := updates["amount"]; present {
		if ferr := validateAmount(amount); ferr != nil {
			violations = append(violations, *ferr)
		}
	}
	if date, present := updates["date"]; present {
		if ferr := validateTransactionDate("date", date, time.Now()); ferr != nil {
			violations = append(violations, *ferr)
		}
	}
	if txType, present := updates["type"]; present {
		s, ok := txType.(string)
		if !ok || !models.TransactionType(s).IsValid() {
			violations = append(violations, FieldError{"type", "must be one of [expense income]"})
		}
	}

	if len(violations) > 0 {
		return NewValidationError("validation failed", violations)
	}
	return nil
}
