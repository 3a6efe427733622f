package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/features/members"
)

// ChatFilter пропускает только флуд-чат и личку участников этого чата.
type ChatFilter struct {
	floodChatID   int64
	memberService *members.Service
	bot           *tgbotapi.BotAPI
}

func NewChatFilter(floodChatID int64, memberService *members.Service, bot *tgbotapi.BotAPI) *ChatFilter {
	return &ChatFilter{
		floodChatID:   floodChatID,
		memberService: memberService,
		bot:           bot,
	}
}

// CheckAccess решает, обрабатывать ли сообщение.
// Разрешены: флуд-чат и личка участника (по БД, с фолбэком на
// GetChatMember и дозаписью в БД).
func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil || message.From == nil {
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chatID,
		"user_id":   userID,
	})

	// 1) Разрешённый чат
	if chatID == f.floodChatID {
		return true
	}

	// 2) Личка: сначала быстро по БД
	if message.Chat.IsPrivate() {
		isMember, err := f.memberService.IsMember(ctx, userID)
		if err != nil {
			logger.WithError(err).Error("Ошибка проверки членства по БД")
			return false
		}
		if isMember {
			return true
		}

		// 2.1) БД не знает пользователя: спрашиваем Telegram
		cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: f.floodChatID,
				UserID: userID,
			},
		})
		if err != nil {
			logger.WithError(err).Error("Ошибка проверки членства через Telegram")
			return false
		}

		switch cm.Status {
		case "creator", "administrator", "member", "restricted":
			if err := f.memberService.EnsureMember(
				ctx, userID,
				message.From.UserName,
				message.From.FirstName,
				message.From.LastName,
			); err != nil {
				logger.WithError(err).Warn("Не удалось дозаписать участника в БД")
			}
			logger.WithField("tg_status", cm.Status).Info("Доступ в личке разрешён")
			return true

		default:
			logger.WithField("tg_status", cm.Status).Info("Доступ в личке запрещён")
			msg := tgbotapi.NewMessage(chatID, "❌ Бот работает только для участников основного чата")
			if _, sendErr := f.bot.Send(msg); sendErr != nil {
				logger.WithError(sendErr).Warn("Не удалось отправить отказ")
			}
			return false
		}
	}

	// 3) Остальные чаты игнорируем
	return false
}
