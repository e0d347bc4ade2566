package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"ledgermind/internal/intent"
	"ledgermind/internal/models"
)

// dispatchTimeout bounds one intent end to end, store calls included
const dispatchTimeout = 30 * time.Second

// IntentHandler exposes the engine over HTTP. Both success and failure
// envelopes go out with status 200; the envelope's success flag carries the
// outcome. Only transport-level problems (bad JSON, missing auth) map to
// non-200 statuses.
type IntentHandler struct {
	engine *intent.Engine
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(engine *intent.Engine) *IntentHandler {
	return &IntentHandler{engine: engine}
}

// Handle processes POST /api/intent
func (h *IntentHandler) Handle(c *fiber.Ctx) error {
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Result{
			Error: &models.ResultError{
				Code:      string(intent.ErrCodeValidation),
				Message:   "request body must be a JSON object",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	// The authenticated identity always wins over whatever the body claims.
	// Timezone and currency fall back to token claims when the body omits
	// them.
	ctxMap, _ := raw["context"].(map[string]interface{})
	if ctxMap == nil {
		ctxMap = map[string]interface{}{}
	}
	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		ctxMap["user_id"] = userID
	}
	if tz, ok := c.Locals("user_timezone").(string); ok && tz != "" {
		if _, present := ctxMap["user_timezone"]; !present {
			ctxMap["user_timezone"] = tz
		}
	}
	if cur, ok := c.Locals("user_currency").(string); ok && cur != "" {
		if _, present := ctxMap["currency"]; !present {
			ctxMap["currency"] = cur
		}
	}
	raw["context"] = ctxMap

	it, perr := intent.ParseIntent(raw)
	if perr != nil {
		return c.JSON(models.Result{
			Error: &models.ResultError{
				Code:      string(perr.Code),
				Message:   perr.Message,
				Details:   perr.Details,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), dispatchTimeout)
	defer cancel()

	return c.JSON(h.engine.Dispatch(ctx, it))
}
