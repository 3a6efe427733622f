// Package admin — service.go содержит логику аутентификации
// и управления сессиями администраторов.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/config"
)

// Service управляет доступом к админ-панели.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService создаёт сервис админ-панели.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Login проверяет пароль администратора с использованием Argon2id
// и создаёт сессию. Доступ разрешён только пользователям из ADMIN_IDS.
// Защита от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	if !s.cfg.IsAdmin(userID) {
		return common.ErrNotAdmin
	}

	attempts, err := s.repo.FailedAttemptsSince(ctx, userID, time.Now().Add(-attemptsWindow))
	if err != nil {
		return err
	}
	if attempts >= maxLoginAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)

	if err := s.repo.RecordLoginAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Error("Ошибка записи попытки входа")
	}

	if !match {
		return common.ErrWrongPassword
	}

	session := &AdminSession{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    time.Now().Add(sessionLifetime),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Администратор вошёл в панель")
	return nil
}

// Logout закрывает сессии администратора.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.repo.CloseSessions(ctx, userID)
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil || session == nil {
		return false
	}
	if err := s.repo.TouchSession(ctx, userID); err != nil {
		log.WithError(err).Debug("Ошибка обновления активности сессии")
	}
	return true
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравнение в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
