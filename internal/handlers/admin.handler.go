package handlers

import (
	"time"
	"veluna/internal/app"
	"veluna/internal/calendar"
	"veluna/internal/clock"
	"veluna/internal/models"
	"veluna/internal/repositories"
	"veluna/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	dailySend *services.DailySendService
	reactions repositories.ReactionRepository
	clock     clock.Clock
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		dailySend: app.Services.DailySend,
		reactions: app.Repository.Reaction,
		clock:     app.Services.Clock,
		Handler: Handler{
			log:        logger.New("handlers").File("admin_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin")

	admin.Post("/send/trigger", h.triggerSend)
	admin.Post("/portal-days/populate", h.populatePortalDays)
	admin.Get("/reactions/stats", h.reactionStats)
}

// triggerSend runs the daily send synchronously. Safe to invoke repeatedly;
// recipients with a record for today are skipped, not re-sent.
func (h *AdminHandler) triggerSend(c *fiber.Ctx) error {
	log := h.log.Function("triggerSend")

	report, err := h.dailySend.Run(c.UserContext())
	if err != nil {
		_ = log.Err("manual daily send failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Daily send failed",
		})
	}

	return c.JSON(report)
}

type populateRequest struct {
	Dates []string `json:"dates"`
}

func (h *AdminHandler) populatePortalDays(c *fiber.Ctx) error {
	log := h.log.Function("populatePortalDays")

	var req populateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	extra := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date: " + raw,
			})
		}
		extra = append(extra, date)
	}

	added, err := h.dailySend.PopulatePortalDays(c.UserContext(), extra)
	if err != nil {
		_ = log.Err("portal day population failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Population failed",
		})
	}

	return c.JSON(fiber.Map{"added": added})
}

func (h *AdminHandler) reactionStats(c *fiber.Ctx) error {
	log := h.log.Function("reactionStats")

	now := h.clock.Now()
	from := calendar.Day(now.AddDate(0, 0, -30))
	to := calendar.Day(now)

	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date: " + raw,
			})
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date: " + raw,
			})
		}
	}

	stats, err := h.reactions.Stats(c.UserContext(), from, to)
	if err != nil {
		_ = log.Err("failed to load reaction stats", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}

	return c.JSON(fiber.Map{
		"from": calendar.DateKey(from),
		"to":   calendar.DateKey(to),
		"up":   stats[models.ReactionUp],
		"down": stats[models.ReactionDown],
	})
}
