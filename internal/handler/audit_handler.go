package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/pandamall/atlogistics/internal/adapter/store"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	store *store.PostgresStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store *store.PostgresStore) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes behind the admin guard.
func (h *AuditHandler) Register(app *fiber.App, authed, admin fiber.Handler) {
	audit := app.Group("/api/audit", authed, admin)
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns recent audit entries, optionally filtered by action.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit := parseIntQuery(c, "limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	action := c.Query("action")

	logs, err := h.store.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
