// Package notify implements reminder delivery for the review scheduler.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends due-drill reminders to a Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier for the given bot token and
// chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// SendReminder implements scheduler.Notifier.
func (n *TelegramNotifier) SendReminder(dueCount int) error {
	text := fmt.Sprintf("📚 You have %d drills due for review. Time to practice!", dueCount)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}

// LogNotifier writes reminders to the process log. Used when no Telegram
// credentials are configured.
type LogNotifier struct{}

// SendReminder implements scheduler.Notifier.
func (LogNotifier) SendReminder(dueCount int) error {
	log.Printf("Reminder: %d drills due for review", dueCount)
	return nil
}
