package push

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink pushes notifications through a Telegram bot. The device
// token registered for a principal is their Telegram chat id.
type TelegramSink struct {
	BotAPI *tgbotapi.BotAPI
}

func NewTelegramSink(token string) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("INFO: push sink authorized on telegram account %s", bot.Self.UserName)
	return &TelegramSink{BotAPI: bot}, nil
}

func (s *TelegramSink) Push(ctx context.Context, deviceToken, title, body string) error {
	chatID, err := strconv.ParseInt(deviceToken, 10, 64)
	if err != nil || chatID == 0 {
		return fmt.Errorf("invalid telegram device token %q", deviceToken)
	}

	msg := tgbotapi.NewMessage(chatID, title+"\n"+body)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.BotAPI.Send(msg); err != nil {
		return fmt.Errorf("telegram push to %d: %w", chatID, err)
	}
	return nil
}
