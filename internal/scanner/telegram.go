package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram API calls to the same chat to avoid
// 429 Too Many Requests (~30/min limit).
const defaultSendInterval = 2 * time.Second

// Channel is where opportunity notifications go. Send returns the channel's
// message ID so the message can be edited later when the opportunity expires.
type Channel interface {
	Send(ctx context.Context, text string) (int, error)
	Edit(ctx context.Context, messageID int, text string) error
}

// TelegramChannel sends and edits messages in one chat via the Bot API.
// All calls are serialized and rate limited.
type TelegramChannel struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	interval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewTelegramChannel creates the channel and verifies the token with GetMe.
func NewTelegramChannel(token string, chatID int64, interval time.Duration) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	me, err := bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("get bot info: %w", err)
	}

	if interval <= 0 {
		interval = defaultSendInterval
	}

	slog.Info("Telegram channel initialized", "bot", me.UserName, "chat_id", chatID)

	return &TelegramChannel{bot: bot, chatID: chatID, interval: interval}, nil
}

// Send delivers a Markdown message and returns its Telegram message ID.
func (c *TelegramChannel) Send(ctx context.Context, text string) (int, error) {
	if err := c.throttle(ctx); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram send: %w", err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a previously sent message.
func (c *TelegramChannel) Edit(ctx context.Context, messageID int, text string) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(c.chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.bot.Send(edit); err != nil {
		return fmt.Errorf("telegram edit message %d: %w", messageID, err)
	}
	return nil
}

// throttle blocks until the send interval since the previous API call has
// passed, or the context is cancelled.
func (c *TelegramChannel) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.interval - time.Since(c.lastCall); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastCall = time.Now()
	return nil
}
