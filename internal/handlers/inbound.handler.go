package handlers

import (
	"strconv"
	"time"
	"veluna/internal/app"
	"veluna/internal/models"
	"veluna/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InboundHandler accepts transport webhooks and queues them as inbound
// events. Routing happens later on the command sweep, so the webhook replies
// fast and never blocks on content generation.
type InboundHandler struct {
	Handler
	recipients    repositories.RecipientRepository
	inboundEvents repositories.InboundEventRepository
}

func NewInboundHandler(app app.App, router fiber.Router) *InboundHandler {
	return &InboundHandler{
		recipients:    app.Repository.Recipient,
		inboundEvents: app.Repository.InboundEvent,
		Handler: Handler{
			log:        logger.New("handlers").File("inbound_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *InboundHandler) Register() {
	inbound := h.router.Group("/inbound")
	inbound.Post("/telegram", h.telegramWebhook)
}

type telegramUpdate struct {
	Message struct {
		Date int64  `json:"date"`
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			LanguageCode string `json:"language_code"`
		} `json:"from"`
	} `json:"message"`
}

func (h *InboundHandler) telegramWebhook(c *fiber.Ctx) error {
	log := h.log.Function("telegramWebhook")

	var update telegramUpdate
	if err := c.BodyParser(&update); err != nil {
		log.Warn("Invalid webhook body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if update.Message.Chat.ID == 0 || update.Message.Text == "" {
		// Updates without routable text (joins, stickers, edits) are fine
		// to acknowledge and drop.
		return c.SendStatus(fiber.StatusOK)
	}

	recipient, err := h.resolveRecipient(c, update)
	if err != nil {
		return log.Err("failed to resolve recipient", err)
	}

	receivedAt := time.Unix(update.Message.Date, 0)
	if update.Message.Date == 0 {
		receivedAt = time.Now()
	}

	event := &models.InboundEvent{
		RecipientID: recipient.ID,
		RawText:     update.Message.Text,
		ReceivedAt:  receivedAt,
	}
	if err := h.inboundEvents.Append(c.UserContext(), event); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue event",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *InboundHandler) resolveRecipient(
	c *fiber.Ctx,
	update telegramUpdate,
) (*models.Recipient, error) {
	ctx := c.UserContext()
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	recipient, err := h.recipients.GetByChatID(ctx, chatID)
	if err == nil {
		return recipient, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	language := "en"
	if update.Message.From.LanguageCode == "de" {
		language = "de"
	}

	recipient = &models.Recipient{
		ChatID:   chatID,
		Language: language,
		IsActive: true,
	}
	if err := h.recipients.UpsertByChatID(ctx, recipient); err != nil {
		return nil, err
	}

	h.log.Info("New recipient registered", "chatID", chatID, "language", language)
	return recipient, nil
}
