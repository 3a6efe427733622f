// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// логируем не больше 50 символов текста
const logTextLimit = 50

// LogMessage логирует входящее сообщение.
// Текст обрезается по рунам: команды русские, обрезка по байтам
// порвала бы UTF-8 посередине символа.
func LogMessage(message *tgbotapi.Message) {
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	text := message.Text
	if runes := []rune(text); len(runes) > logTextLimit {
		text = string(runes[:logTextLimit]) + "…"
	}

	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.UserName,
		"private":  message.Chat.IsPrivate(),
		"text":     text,
	}).Debug("Входящее сообщение")
}
