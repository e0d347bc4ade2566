package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Boolean filter compiler. Each recognized filter key has its own small
// compiler function in a registry; unrecognized keys fall through to a
// verbatim equality condition. Entries with nil values are dropped as "no
// constraint", never treated as "match nothing".

type filterCompiler func(value interface{}) (bson.M, *Error)

// filterCompilers maps filter key to its compilation rule. Keys not present
// here compile through compileGeneric.
var filterCompilers = map[string]filterCompiler{
	"date_range":         compileDateRange,
	"amount_range":       compileAmountRange,
	"categories":         compileAnyOf("category"),
	"exclude_categories": compileNotIn("category"),
	"tags":               compileAll("tags"),
	"exclude_tags":       compileNotIn("tags"),
	"status":             compileEqualityOrSet("status"),
	"payment_method":     compileEqualityOrSet("payment_method"),
	"type":               compileEqualityOrSet("type"),
	"merchant":           compileSubstring("merchant"),
	"user_id":            compileEquality("user_id"),
}

// CompileFilters turns a declarative filter map plus a logic mode into a
// single store predicate. An empty or fully-dropped map compiles to the
// match-everything predicate; a single condition is returned unwrapped; two
// or more are combined under $and/$or per logic ("AND"/"OR",
// case-insensitive).
func CompileFilters(filters map[string]interface{}, logic string) (bson.M, *Error) {
	operator, err := logicOperator(logic)
	if err != nil {
		return nil, err
	}

	// Sorted keys keep compilation deterministic for identical input
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]bson.M, 0, len(keys))
	for _, key := range keys {
		value := filters[key]
		if value == nil {
			continue
		}

		compile, known := filterCompilers[key]
		if !known {
			compile = compileGeneric(key)
		}

		cond, err := compile(value)
		if err != nil {
			return nil, err
		}
		if cond != nil {
			conditions = append(conditions, cond)
		}
	}

	switch len(conditions) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conditions[0], nil
	default:
		return bson.M{operator: conditions}, nil
	}
}

// AddNotFilter compiles notFilters and conjoins its negation ($nor) with the
// primary predicate. A trivial primary predicate leaves the negated clause
// standing alone.
func AddNotFilter(predicate bson.M, notFilters map[string]interface{}) (bson.M, *Error) {
	notPredicate, err := CompileFilters(notFilters, "AND")
	if err != nil {
		return nil, err
	}
	if len(notPredicate) == 0 {
		return predicate, nil
	}

	negated := bson.M{"$nor": []bson.M{notPredicate}}
	if len(predicate) == 0 {
		return negated, nil
	}
	return bson.M{"$and": []bson.M{predicate, negated}}, nil
}

// scopeByOwner restricts a predicate to the calling identity. The top-level
// key ANDs with any $and/$or clause already present, and overrides any
// caller-supplied user_id condition.
func scopeByOwner(predicate bson.M, userID string) bson.M {
	if predicate == nil {
		predicate = bson.M{}
	}
	predicate["user_id"] = userID
	return predicate
}

func logicOperator(logic string) (string, *Error) {
	switch strings.ToUpper(logic) {
	case "", "AND":
		return "$and", nil
	case "OR":
		return "$or", nil
	}
	return "", NewValidationError(fmt.Sprintf("invalid logic %q, must be AND or OR", logic), nil)
}

// compileDateRange builds an inclusive range condition on date from a
// {start, end} object. Either bound may be omitted.
func compileDateRange(value interface{}) (bson.M, *Error) {
	rangeMap, ok := value.(map[string]interface{})
	if !ok {
		if p, ok := value.(Period); ok {
			return bson.M{"date": bson.M{"$gte": p.Start, "$lte": p.End}}, nil
		}
		return nil, NewValidationError("date_range must be an object with start and end", nil)
	}

	cond := bson.M{}
	var start, end time.Time
	var hasStart, hasEnd bool

	if raw, present := rangeMap["start"]; present && raw != nil {
		parsed, err := parseDate(raw)
		if err != nil {
			return nil, NewValidationError("date_range.start is not a valid date", nil)
		}
		start, hasStart = parsed, true
		cond["$gte"] = parsed
	}
	if raw, present := rangeMap["end"]; present && raw != nil {
		parsed, err := parseDate(raw)
		if err != nil {
			return nil, NewValidationError("date_range.end is not a valid date", nil)
		}
		end, hasEnd = parsed, true
		cond["$lte"] = parsed
	}
	if len(cond) == 0 {
		return nil, nil
	}
	if hasStart && hasEnd {
		if ferr := validateDateRange(start, end); ferr != nil {
			return nil, NewValidationError("validation failed", []FieldError{*ferr})
		}
	}

	return bson.M{"date": cond}, nil
}

// compileAmountRange builds an inclusive range condition on amount from a
// {min, max} object. Either bound may be omitted.
func compileAmountRange(value interface{}) (bson.M, *Error) {
	rangeMap, ok := value.(map[string]interface{})
	if !ok {
		return nil, NewValidationError("amount_range must be an object with min and max", nil)
	}

	cond := bson.M{}
	if min, present := getNumber(rangeMap, "min"); present {
		cond["$gte"] = min
	}
	if max, present := getNumber(rangeMap, "max"); present {
		cond["$lte"] = max
	}
	if len(cond) == 0 {
		return nil, nil
	}
	return bson.M{"amount": cond}, nil
}

// compileAnyOf builds inclusion on field with exact case-insensitive match
// per item; matching any listed value is enough. Tags use compileAll instead
// because every listed tag must be present.
func compileAnyOf(field string) filterCompiler {
	return func(value interface{}) (bson.M, *Error) {
		patterns := exactInsensitivePatterns(value)
		if patterns == nil {
			return nil, nil
		}
		return bson.M{field: bson.M{"$in": patterns}}, nil
	}
}

// compileAll requires every listed item to be present on the array field
func compileAll(field string) filterCompiler {
	return func(value interface{}) (bson.M, *Error) {
		patterns := exactInsensitivePatterns(value)
		if patterns == nil {
			return nil, nil
		}
		return bson.M{field: bson.M{"$all": patterns}}, nil
	}
}

// compileNotIn is the negated form: none of the listed values may match
func compileNotIn(field string) filterCompiler {
	return func(value interface{}) (bson.M, *Error) {
		patterns := exactInsensitivePatterns(value)
		if patterns == nil {
			return nil, nil
		}
		return bson.M{field: bson.M{"$nin": patterns}}, nil
	}
}

// compileEqualityOrSet compiles a scalar to equality and a list to
// set-membership
func compileEqualityOrSet(field string) filterCompiler {
	return func(value interface{}) (bson.M, *Error) {
		if list := toStringSlice(value); list != nil {
			if len(list) == 0 {
				return nil, nil
			}
			values := make(bson.A, len(list))
			for i, item := range list {
				values[i] = item
			}
			return bson.M{field: bson.M{"$in": values}}, nil
		}
		return bson.M{field: value}, nil
	}
}

// compileSubstring builds a case-insensitive substring match
func compileSubstring(field string) filterCompiler {
	return func(value interface{}) (bson.M, *Error) {
		s, ok := value.(string)
		if !ok {
			return nil, NewValidationError(fmt.Sprintf("%s filter must be a string", field), nil)
		}
		if s == "" {
			return nil, nil
		}
		return bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}}, nil
	}
}

func compileEquality(field string) filterCompiler {
	return func(value interface{}) (bson.M, *Error) {
		return bson.M{field: value}, nil
	}
}

// compileGeneric is the fallback for unrecognized keys: verbatim equality on
// that field. Unknown keys pass through rather than erroring; only enumerated
// values (logic, aggregate operations, group_by) are rejected when unknown.
func compileGeneric(field string) filterCompiler {
	return compileEquality(field)
}

// exactInsensitivePatterns converts a string list into anchored
// case-insensitive regex patterns. Returns nil for empty or non-list values
// so the entry is dropped rather than matching nothing.
func exactInsensitivePatterns(value interface{}) bson.A {
	list := toStringSlice(value)
	if len(list) == 0 {
		return nil
	}
	patterns := make(bson.A, len(list))
	for i, item := range list {
		patterns[i] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(item) + "$", Options: "i"}
	}
	return patterns
}
