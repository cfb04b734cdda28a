package status

import (
	"errors"

	"dialog-collator/core/logger"
	"dialog-collator/feature/archive"
	"dialog-collator/feature/cycle"
	"dialog-collator/feature/reginfo"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthPath is served without authentication.
const HealthPath = "/health"

// Handler handles HTTP requests of the operations API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the operations routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get(HealthPath, h.HandleHealth)

	group := app.Group("/api")
	group.Get("/watchers", h.HandleWatchers)
	group.Post("/passes/:pass", h.HandleTriggerPass)
	group.Get("/sharedline", h.HandleSharedLine)
	group.Post("/reginfo/parse", h.HandleParseRegInfo)
	group.Get("/archive", h.HandleArchiveList)
	group.Get("/archive/latest", h.HandleArchiveLatest)
}

// HandleHealth reports the state of the service's dependencies.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	failed := h.service.Health(c.Context())
	if len(failed) > 0 {
		logger.WithRayID(h.service.logger, c).Warn("Health check failed", zap.Any("failed", failed))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "failed": failed})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleWatchers lists the watchers the next pass would visit.
func (h *Handler) HandleWatchers(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	list, err := h.service.Watchers(c.Context())
	if err != nil {
		l.Error("Watcher discovery failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"count": len(list), "watchers": list})
}

// HandleTriggerPass runs a check or collate pass and returns its summary.
func (h *Handler) HandleTriggerPass(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	pass := c.Params("pass")
	l.Info("Triggering pass", zap.String("pass", pass))

	res, err := h.service.TriggerPass(c.Context(), pass)
	switch {
	case errors.Is(err, ErrUnknownPass):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, cycle.ErrPassDisabled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Pass failed", zap.String("pass", pass), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "result": res})
	}
	return c.JSON(res)
}

// HandleSharedLine answers whether ?user= is a shared-line user.
func (h *Handler) HandleSharedLine(c *fiber.Ctx) error {
	user := c.Query("user")
	if user == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user is required"})
	}

	shared, err := h.service.IsSharedLineUser(c.Context(), user)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Shared-line lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"user": user, "shared": shared})
}

// HandleParseRegInfo parses the request body as a registration event
// document and returns the subscriptions it would produce.
func (h *Handler) HandleParseRegInfo(c *fiber.Ctx) error {
	doc, intents, err := h.service.ParseRegInfo(c.Body())
	if errors.Is(err, reginfo.ErrMalformedDocument) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"registrations": len(doc.Registrations),
		"intents":       intents,
	})
}

// HandleArchiveList lists the archived documents of ?presentity=.
func (h *Handler) HandleArchiveList(c *fiber.Ctx) error {
	presentity := c.Query("presentity")
	if presentity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "presentity is required"})
	}

	entries, err := h.service.ArchiveEntries(c.Context(), presentity)
	if err != nil {
		return h.archiveError(c, err)
	}
	return c.JSON(fiber.Map{"presentity": presentity, "documents": entries})
}

// HandleArchiveLatest returns the newest archived document of ?presentity=.
func (h *Handler) HandleArchiveLatest(c *fiber.Ctx) error {
	presentity := c.Query("presentity")
	if presentity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "presentity is required"})
	}

	entry, body, err := h.service.LatestDocument(c.Context(), presentity)
	if err != nil {
		return h.archiveError(c, err)
	}
	c.Set("X-Archive-Key", entry.Key)
	c.Set(fiber.HeaderContentType, "application/dialog-info+xml")
	return c.Send(body)
}

func (h *Handler) archiveError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrArchiveDisabled):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, archive.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error("Archive read failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
