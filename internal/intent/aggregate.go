package intent

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Aggregate reductions and grouping keys the engine supports
var (
	aggregateOperations = []string{"sum", "avg", "count", "min", "max"}
	groupByValues       = []string{"category", "type", "payment_method", "status", "month", "year", "day", "week"}
)

// handleAggregate runs a grouped reduction over the compiled predicate.
// Ungrouped calls collapse to a single row; grouped calls return one row per
// distinct key, sorted ascending by key.
func (e *Engine) handleAggregate(ctx context.Context, req *Request) (interface{}, error) {
	operation := getString(req.Params, "operation", "")
	if !containsString(aggregateOperations, operation) {
		return nil, NewValidationError(
			fmt.Sprintf("invalid aggregate operation %q, must be one of %v", operation, aggregateOperations), nil)
	}

	groupBy := getString(req.Params, "group_by", "")
	if groupBy != "" && !containsString(groupByValues, groupBy) {
		return nil, NewValidationError(
			fmt.Sprintf("invalid group_by %q, must be one of %v", groupBy, groupByValues), nil)
	}

	predicate, err := e.buildPredicate(ctx, req,
		gatherFilters(req),
		getString(req.Params, "logic", "AND"),
		getMap(req.Params, "exclude"))
	if err != nil {
		return nil, err
	}

	pipeline := buildAggregatePipeline(predicate, operation, groupBy)

	rows, err := e.store.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"operation": operation,
		"results":   shapeAggregateRows(rows, groupBy),
	}
	if groupBy != "" {
		data["group_by"] = groupBy
	}
	return data, nil
}

// buildAggregatePipeline assembles match + group + sort stages. The sort on
// _id gives the ascending-by-key row order grouped callers rely on.
func buildAggregatePipeline(predicate bson.M, operation, groupBy string) []bson.M {
	group := bson.M{
		"_id":   groupKeyExpression(groupBy),
		"value": valueAccumulator(operation),
		"count": bson.M{"$sum": 1},
	}

	return []bson.M{
		{"$match": predicate},
		{"$group": group},
		{"$sort": bson.M{"_id": 1}},
	}
}

// groupKeyExpression maps a group_by value to its grouping expression.
// Calendar groupings decompose the date so one row covers one distinct
// (year, month)/(year)/(year, month, day)/(iso year, iso week) key.
// Compound keys are bson.D: the sort on _id compares subdocument fields in
// document order, so the year component must always marshal first.
func groupKeyExpression(groupBy string) interface{} {
	switch groupBy {
	case "":
		return nil
	case "month":
		return bson.D{
			{Key: "year", Value: bson.M{"$year": "$date"}},
			{Key: "month", Value: bson.M{"$month": "$date"}},
		}
	case "year":
		return bson.D{
			{Key: "year", Value: bson.M{"$year": "$date"}},
		}
	case "day":
		return bson.D{
			{Key: "year", Value: bson.M{"$year": "$date"}},
			{Key: "month", Value: bson.M{"$month": "$date"}},
			{Key: "day", Value: bson.M{"$dayOfMonth": "$date"}},
		}
	case "week":
		return bson.D{
			{Key: "year", Value: bson.M{"$isoWeekYear": "$date"}},
			{Key: "week", Value: bson.M{"$isoWeek": "$date"}},
		}
	default:
		return "$" + groupBy
	}
}

func valueAccumulator(operation string) bson.M {
	if operation == "count" {
		return bson.M{"$sum": 1}
	}
	return bson.M{"$" + operation: "$amount"}
}

// shapeAggregateRows flattens raw group rows into caller-facing result rows.
// Scalar keys surface under the group_by name; calendar keys are merged in
// as their component fields. An empty ungrouped result still yields one
// zero-valued row.
func shapeAggregateRows(rows []bson.M, groupBy string) []map[string]interface{} {
	if groupBy == "" {
		row := map[string]interface{}{"value": 0.0, "count": 0}
		if len(rows) > 0 {
			row["value"] = rows[0]["value"]
			row["count"] = rows[0]["count"]
		}
		return []map[string]interface{}{row}
	}

	results := make([]map[string]interface{}, 0, len(rows))
	for _, raw := range rows {
		row := map[string]interface{}{
			"value": raw["value"],
			"count": raw["count"],
		}
		switch key := raw["_id"].(type) {
		case bson.D:
			for _, e := range key {
				row[e.Key] = e.Value
			}
		case bson.M:
			for k, v := range key {
				row[k] = v
			}
		case map[string]interface{}:
			for k, v := range key {
				row[k] = v
			}
		default:
			row[groupBy] = key
		}
		results = append(results, row)
	}
	return results
}
