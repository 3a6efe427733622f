package middleware

import (
	"sync"
	"time"
)

// RateLimiter ограничивает количество команд на пользователя.
// Фиксированное окно со счётчиком: первая команда открывает окно,
// по его истечении счёт начинается заново. Дешевле скользящего окна —
// на пользователя хранится счётчик и одна метка времени.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*bucket
	limit   int
	window  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

type bucket struct {
	count   int
	startAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[int64]*bucket),
		limit:   limit,
		window:  window,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Close останавливает фоновую горутину очистки.
// Вызывается на shutdown (иначе cleanup будет жить вечно).
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[userID]
	if !ok || now.Sub(b.startAt) >= rl.window {
		rl.buckets[userID] = &bucket{count: 1, startAt: now}
		return true
	}
	if b.count >= rl.limit {
		return false
	}
	b.count++
	return true
}

// cleanup выбрасывает протухшие окна, чтобы карта не росла бесконечно.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for userID, b := range rl.buckets {
				if b.startAt.Before(cutoff) {
					delete(rl.buckets, userID)
				}
			}
			rl.mu.Unlock()
		}
	}
}
