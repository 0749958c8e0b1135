package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"veluna/config"

	logger "github.com/Bparsons0904/goLogger"
)

// Transport delivers outbound text to a recipient's chat. Delivery is best
// effort; a failed send is reported, never retried here.
type Transport interface {
	Send(ctx context.Context, chatID string, text string) error
}

const transportHTTPTimeout = 30 * time.Second

// TelegramTransport sends messages through the Telegram Bot API.
type TelegramTransport struct {
	token  string
	client *http.Client
	log    logger.Logger
}

func NewTelegramTransport(config config.Config) *TelegramTransport {
	return &TelegramTransport{
		token:  config.TelegramBotToken,
		client: &http.Client{Timeout: transportHTTPTimeout},
		log:    logger.New("telegramTransport"),
	}
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *TelegramTransport) Send(ctx context.Context, chatID string, text string) error {
	log := t.log.Function("Send")

	body, err := json.Marshal(telegramSendRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return log.Err("failed to marshal telegram request", err, "chatID", chatID)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return log.Err("failed to build telegram request", err, "chatID", chatID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return log.Err("telegram send failed", err, "chatID", chatID)
	}
	defer resp.Body.Close()

	var telegramResp telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&telegramResp); err != nil {
		return log.Err("failed to decode telegram response", err,
			"chatID", chatID, "status", resp.StatusCode)
	}
	if !telegramResp.OK {
		return log.ErrMsg(fmt.Sprintf("telegram rejected message: %s", telegramResp.Description))
	}

	log.Info("Message delivered", "chatID", chatID, "length", len(text))
	return nil
}
