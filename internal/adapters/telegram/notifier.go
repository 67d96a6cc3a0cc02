package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
)

const maxListedErrors = 10

// Sender: часть tgbotapi.BotAPI, нужная уведомлениям.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет итоги прогона в служебный чат.
type Notifier struct {
	bot    Sender
	chatID int64
}

var _ domain.RunNotifier = (*Notifier)(nil)

// NewNotifier создаёт уведомитель. Нулевой chatID отключает отправку.
func NewNotifier(bot Sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// NotifyRun отправляет сводку прогона.
func (n *Notifier) NotifyRun(ctx context.Context, result domain.RunResult) error {
	if n == nil || n.bot == nil || n.chatID == 0 {
		return nil
	}
	for _, part := range SplitMessage(FormatRun(result)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.DisableWebPagePreview = true
		start := time.Now()
		_, err := n.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram", "send_message", "notify_chat", start, err)
		if err != nil {
			return fmt.Errorf("telegram: send run summary: %w", err)
		}
	}
	return nil
}

// FormatRun собирает текст уведомления.
func FormatRun(result domain.RunResult) string {
	var b strings.Builder
	if result.OK {
		b.WriteString("✅ Schedule generator run finished\n")
	} else {
		b.WriteString("❌ Schedule generator run failed\n")
	}
	if result.Message != "" {
		b.WriteString(result.Message)
		b.WriteString("\n")
	}
	if result.Summary != "" {
		b.WriteString(result.Summary)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Folders: %d, dropped: %d\n", result.FoldersCreated, result.DraftsDropped)
	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			if i == maxListedErrors {
				fmt.Fprintf(&b, "… and %d more\n", len(result.Errors)-maxListedErrors)
				break
			}
			b.WriteString("• ")
			b.WriteString(e)
			b.WriteString("\n")
		}
	}
	return b.String()
}
