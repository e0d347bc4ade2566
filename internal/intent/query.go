package intent

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// defaultQueryLimit is the page size when the caller omits limit
const defaultQueryLimit = 100

// handleQuery returns one page of matching transactions plus count, total
// and pagination metadata.
func (e *Engine) handleQuery(ctx context.Context, req *Request) (interface{}, error) {
	limit := getInt(req.Params, "limit", defaultQueryLimit)
	skip := getInt(req.Params, "skip", 0)

	var violations []FieldError
	if ferr := validateLimit(limit); ferr != nil {
		violations = append(violations, *ferr)
	}
	if ferr := validateSkip(skip); ferr != nil {
		violations = append(violations, *ferr)
	}
	if len(violations) > 0 {
		return nil, NewValidationError("validation failed", violations)
	}

	predicate, err := e.buildPredicate(ctx, req,
		gatherFilters(req),
		getString(req.Params, "logic", "AND"),
		getMap(req.Params, "exclude"))
	if err != nil {
		return nil, err
	}

	records, err := e.store.Find(ctx, predicate, FindOptions{
		Sort:  sortOrder(req.Params),
		Limit: limit,
		Skip:  skip,
	})
	if err != nil {
		return nil, err
	}

	total, err := e.store.Count(ctx, predicate)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"transactions": records,
		"count":        len(records),
		"total":        total,
		"limit":        limit,
		"skip":         skip,
		"has_more":     skip+int64(len(records)) < total,
	}, nil
}

// sortOrder builds the sort document from the caller's sort map, defaulting
// to newest-first. Keys are applied in lexical order so identical input
// always produces the same document.
func sortOrder(params map[string]interface{}) bson.D {
	sortMap := getMap(params, "sort")
	if len(sortMap) == 0 {
		return bson.D{{Key: "date", Value: -1}}
	}

	fields := make([]string, 0, len(sortMap))
	for field := range sortMap {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	order := make(bson.D, 0, len(fields))
	for _, field := range fields {
		direction := 1
		if n, ok := asNumber(sortMap[field]); ok && n < 0 {
			direction = -1
		}
		order = append(order, bson.E{Key: field, Value: direction})
	}
	return order
}
