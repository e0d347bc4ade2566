package intent

import (
	"context"
	"time"

	"ledgermind/internal/models"
)

// insertSchema covers the shape of an insert payload; domain bounds for
// amount and date are checked separately.
var insertSchema = Schema{
	"amount":         {Type: "number", Required: true},
	"date":           {Type: "date", Required: true},
	"category":       {Type: "string", Required: true, MinLength: intPtr(1), MaxLength: intPtr(100)},
	"type":           {Type: "string", Required: true, Enum: []string{"expense", "income"}},
	"description":    {Type: "string", MaxLength: intPtr(500)},
	"subcategory":    {Type: "string", MaxLength: intPtr(100)},
	"tags":           {Type: "array", MaxLength: intPtr(20)},
	"payment_method": {Type: "string", MaxLength: intPtr(50)},
	"merchant":       {Type: "string", MaxLength: intPtr(200)},
	"status":         {Type: "string", MaxLength: intPtr(50)},
	"currency":       {Type: "string", MinLength: intPtr(3), MaxLength: intPtr(3)},
}

// handleInsert validates and stores one new transaction owned by the caller
func (e *Engine) handleInsert(ctx context.Context, req *Request) (interface{}, error) {
	if err := ValidateSchema(req.Params, insertSchema); err != nil {
		return nil, err
	}

	now := time.Now()
	var violations []FieldError
	if ferr := validateAmount(req.Params["amount"]); ferr != nil {
		violations = append(violations, *ferr)
	}
	if ferr := validateTransactionDate("date", req.Params["date"], now); ferr != nil {
		violations = append(violations, *ferr)
	}
	if len(violations) > 0 {
		return nil, NewValidationError("validation failed", violations)
	}

	amount, _ := asNumber(req.Params["amount"])
	date, _ := parseDate(req.Params["date"])

	currency := getString(req.Params, "currency", req.Currency)

	tx := &models.Transaction{
		UserID:        req.UserID,
		Amount:        amount,
		Date:          date,
		Category:      getString(req.Params, "category", ""),
		Subcategory:   getString(req.Params, "subcategory", ""),
		Type:          models.TransactionType(getString(req.Params, "type", "")),
		Description:   getString(req.Params, "description", ""),
		Tags:          toStringSlice(req.Params["tags"]),
		PaymentMethod: getString(req.Params, "payment_method", ""),
		Merchant:      getString(req.Params, "merchant", ""),
		Status:        getString(req.Params, "status", ""),
		Currency:      currency,
		CreatedAt:     now,
	}

	id, err := e.store.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"transaction_id": id,
		"transaction":    tx,
	}, nil
}

func intPtr(n int) *int { return &n }
