package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// TelegramSender отправляет сообщения через бота своей роли:
// репетиторам пишет бот репетиторов, родителям бот родителей
type TelegramSender struct {
	bots   map[model.ActorRole]*bot.Bot
	logger *zap.Logger
}

// NewTelegramSender создаёт отправителя. Бот роли может быть nil,
// тогда отправка этой роли завершается ошибкой.
func NewTelegramSender(tutorBot, guardianBot *bot.Bot, logger *zap.Logger) *TelegramSender {
	return &TelegramSender{
		bots: map[model.ActorRole]*bot.Bot{
			model.RoleTutor:    tutorBot,
			model.RoleGuardian: guardianBot,
		},
		logger: logger,
	}
}

// NewBot создаёт клиента Bot API без запуска long polling
func NewBot(token string, opts ...bot.Option) (*bot.Bot, error) {
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

// Send отправляет текст получателю
func (s *TelegramSender) Send(ctx context.Context, to Recipient, text string) error {
	if to.ChatID == 0 {
		return fmt.Errorf("%w: %s %d", ErrNoChat, to.Role, to.UserID)
	}

	b := s.bots[to.Role]
	if b == nil {
		return fmt.Errorf("send telegram message: no bot configured for %s", to.Role)
	}

	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: to.ChatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message to %s %d: %w", to.Role, to.UserID, err)
	}

	s.logger.Debug("Telegram message sent",
		zap.String("role", string(to.Role)),
		zap.Int64("user_id", to.UserID),
		zap.Int("message_id", msg.ID),
	)
	return nil
}
