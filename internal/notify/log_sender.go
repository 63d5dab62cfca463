package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender пишет сообщения в лог вместо отправки. Используется,
// когда токены ботов не заданы (локальный запуск).
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to Recipient, text string) error {
	if to.ChatID == 0 {
		return ErrNoChat
	}
	s.logger.Info("Notification",
		zap.String("role", string(to.Role)),
		zap.Int64("user_id", to.UserID),
		zap.Int64("chat_id", to.ChatID),
		zap.String("text", text),
	)
	return nil
}
