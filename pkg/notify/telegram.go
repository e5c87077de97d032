package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender posts alerts to the configured staff chats.
type TelegramSender struct {
	bot     botAPI
	chatIDs []int64
}

// NewTelegramSender authenticates the bot token and returns a sink.
func NewTelegramSender(token string, chatIDs []int64) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	return &TelegramSender{bot: api, chatIDs: chatIDs}, nil
}

// Name implements Sink.
func (t *TelegramSender) Name() string { return "telegram" }

// Send implements Sink. Every chat is attempted; failures are joined.
func (t *TelegramSender) Send(ctx context.Context, msg Message) error {
	text := fmt.Sprintf("%s\n%s", msg.Subject, msg.Body)
	var errs []error
	for _, chatID := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("send to chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
