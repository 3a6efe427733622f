// Package members — service.go содержит бизнес-логику управления участниками:
// регистрация новых, проверка членства, поиск получателя перевода.
package members

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Service управляет участниками чата.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис участников.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// HandleNewMember обрабатывает вступление нового пользователя в чат.
// Если пользователь уже есть в базе (перезашёл) — обновляет его данные.
func (s *Service) HandleNewMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	existing, _ := s.repo.GetByUserID(ctx, userID)
	if existing != nil {
		log.WithField("user_id", userID).Info("Участник перезашёл в чат, обновляем данные")
		return s.repo.UpdateInfo(ctx, userID, UpdateInfo{
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		})
	}

	member := &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return fmt.Errorf("ошибка регистрации нового участника: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Новый участник зарегистрирован")

	return nil
}

// EnsureMember гарантирует, что пользователь есть в базе.
// Если нет — создаёт запись. Вызывается на каждое первое сообщение.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	exists, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.HandleNewMember(ctx, userID, username, firstName, lastName)
}

// IsMember проверяет, является ли пользователь участником чата.
// Используется для валидации доступа к DM.
func (s *Service) IsMember(ctx context.Context, userID int64) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// GetByUserID возвращает участника по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Resolve находит участника по строке "@username" или "username".
// Балансы всегда ключуются по user ID — username здесь только для поиска.
func (s *Service) Resolve(ctx context.Context, ref string) (*Member, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "@")
	return s.repo.GetByUsername(ctx, ref)
}
