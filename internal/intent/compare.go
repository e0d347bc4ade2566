package intent

import (
	"context"
	"fmt"
	"math"
)

var compareMetrics = []string{"sum", "avg", "count"}

// handleCompare runs the same metric reduction twice, once per side, and
// returns both sides plus their difference. Sides are either two named
// periods or two categories; the shared filter map applies to both.
func (e *Engine) handleCompare(ctx context.Context, req *Request) (interface{}, error) {
	metric := getString(req.Params, "metric", "sum")
	if !containsString(compareMetrics, metric) {
		return nil, NewValidationError(
			fmt.Sprintf("invalid metric %q, must be one of %v", metric, compareMetrics), nil)
	}

	compareType := getString(req.Params, "compare_type", "")

	var labelA, labelB, sideKey string
	switch compareType {
	case "period":
		labelA = getString(req.Params, "period_a", "")
		labelB = getString(req.Params, "period_b", "")
		sideKey = "period"
	case "category":
		labelA = getString(req.Params, "category_a", "")
		labelB = getString(req.Params, "category_b", "")
		sideKey = "categories"
	default:
		return nil, NewValidationError(
			fmt.Sprintf("invalid compare_type %q, must be period or category", compareType), nil)
	}

	if labelA == "" || labelB == "" {
		return nil, NewValidationError(
			fmt.Sprintf("compare requires both %s_a and %s_b", compareType, compareType), nil)
	}

	valueA, err := e.compareSide(ctx, req, metric, sideKey, labelA)
	if err != nil {
		return nil, err
	}
	valueB, err := e.compareSide(ctx, req, metric, sideKey, labelB)
	if err != nil {
		return nil, err
	}

	absolute := valueB - valueA
	percentage := 0.0
	if valueA != 0 {
		percentage = math.Round(absolute/valueA*100*100) / 100
	}

	direction := "no_change"
	switch {
	case absolute > 0:
		direction = "increase"
	case absolute < 0:
		direction = "decrease"
	}

	return map[string]interface{}{
		"compare_type": compareType,
		"metric":       metric,
		"side_a":       map[string]interface{}{"label": labelA, "value": valueA},
		"side_b":       map[string]interface{}{"label": labelB, "value": valueB},
		"difference": map[string]interface{}{
			"absolute":   absolute,
			"percentage": percentage,
			"direction":  direction,
		},
	}, nil
}

// compareSide runs one ungrouped metric reduction with the side's
// constraint layered onto the shared filter map.
func (e *Engine) compareSide(ctx context.Context, req *Request, metric, sideKey, label string) (float64, error) {
	filters := gatherFilters(req)
	if sideKey == "categories" {
		filters[sideKey] = []interface{}{label}
	} else {
		filters[sideKey] = label
	}

	predicate, err := e.buildPredicate(ctx, req, filters,
		getString(req.Params, "logic", "AND"), nil)
	if err != nil {
		return 0, err
	}

	rows, err := e.store.Aggregate(ctx, buildAggregatePipeline(predicate, metric, ""))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	value, _ := asNumber(rows[0]["value"])
	return value, nil
}
