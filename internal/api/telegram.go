package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/amirbiron/markdown-trainer/internal/training"
)

// Sender delivers outbound messages to the chat platform.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, msg training.Message) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// TelegramClient sends messages through the Telegram Bot API.
type TelegramClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// TelegramConfig holds configuration for the Telegram client.
type TelegramConfig struct {
	Token   string
	BaseURL string // default: https://api.telegram.org
}

// NewTelegramClient creates a new Bot API client.
func NewTelegramClient(cfg TelegramConfig) *TelegramClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	return &TelegramClient{
		token:      cfg.Token,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{},
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage delivers one message, with its buttons as an inline keyboard.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, msg training.Message) error {
	req := sendMessageRequest{
		ChatID:    chatID,
		Text:      msg.Text,
		ParseMode: "Markdown",
	}
	if len(msg.Keyboard) > 0 {
		kb := &inlineKeyboard{}
		for _, row := range msg.Keyboard {
			var buttons []inlineButton
			for _, b := range row {
				buttons = append(buttons, inlineButton{Text: b.Label, CallbackData: b.Data})
			}
			kb.InlineKeyboard = append(kb.InlineKeyboard, buttons)
		}
		req.ReplyMarkup = kb
	}
	return c.call(ctx, "sendMessage", req)
}

// AnswerCallback acknowledges a button press so the client drops its loading
// state.
func (c *TelegramClient) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID})
}

func (c *TelegramClient) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s failed: %s", method, apiResp.Description)
	}
	return nil
}
