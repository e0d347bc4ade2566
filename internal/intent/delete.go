package intent

import (
	"context"
	"fmt"
)

// handleDelete removes one record by id or many by filter. The confirm flag
// is checked before anything else; without it no store call is made.
func (e *Engine) handleDelete(ctx context.Context, req *Request) (interface{}, error) {
	if !getBool(req.Params, "confirm") {
		return nil, NewValidationError("delete requires confirm: true", nil)
	}

	if id := getString(req.Params, "id", ""); id != "" {
		deleted, err := e.store.DeleteOne(ctx, id, req.UserID)
		if err != nil {
			return nil, err
		}
		if deleted == 0 {
			return nil, NewNotFoundError(fmt.Sprintf("no transaction with id %s", id))
		}
		return map[string]interface{}{"deleted_count": deleted}, nil
	}

	filters := gatherFilters(req)
	if len(filters) == 0 {
		return nil, NewValidationError("delete requires an id or a non-empty filter map", nil)
	}

	// Filter-based deletes are always additionally scoped by owner inside
	// buildPredicate.
	predicate, err := e.buildPredicate(ctx, req, filters,
		getString(req.Params, "logic", "AND"), nil)
	if err != nil {
		return nil, err
	}

	deleted, err := e.store.DeleteMany(ctx, predicate)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted_count": deleted}, nil
}
