package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"
)

// Telegram sends alert summaries through the Bot API. The client is built
// once at startup; a process-wide rate limiter keeps bursts of changed alert
// sets under the API limit.
type Telegram struct {
	bot     *bot.Bot
	chatID  int64
	limiter *rate.Limiter
}

func NewTelegram(token string, chatID int64, ratePerSecond int) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram notifier requires a bot token and chat id")
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	// Skip the getMe round-trip so construction needs no network.
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{
		bot:     b,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
	}, nil
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Send(ctx context.Context, messages []string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}

	if _, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      formatAlertText(messages),
		ParseMode: "Markdown",
	}); err != nil {
		return fmt.Errorf("send telegram message to chat %d: %w", t.chatID, err)
	}
	return nil
}

func formatAlertText(messages []string) string {
	var sb strings.Builder
	sb.WriteString("*Home-SOC Critical Alerts:*")
	for _, m := range messages {
		sb.WriteString("\n- ")
		sb.WriteString(m)
	}
	return sb.String()
}
