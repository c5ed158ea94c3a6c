package dialogue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultSessionTTL      = 30 * time.Minute
	DefaultSessionCapacity = 10000
)

// Sessions - таблица сессий по chat id с TTL и ограниченной ёмкостью
type Sessions struct {
	items    map[int64]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessions создает таблицу сессий
func NewSessions(ttl time.Duration, capacity int, logger *slog.Logger) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}

	return &Sessions{
		items:    make(map[int64]*Session),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
	}
}

// Get возвращает живую сессию чата
func (t *Sessions) Get(chatID int64) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.items[chatID]
	if !ok || t.expired(s) {
		return nil, false
	}

	return s, true
}

// Put сохраняет сессию и обновляет время последнего обращения.
// При переполнении вытесняет самую давнюю сессию.
func (t *Sessions) Put(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s.UpdatedAt = t.now()

	if _, ok := t.items[s.ChatID]; !ok && len(t.items) >= t.capacity {
		t.evictOldest()
	}

	t.items[s.ChatID] = s
}

// Delete удаляет сессию чата
func (t *Sessions) Delete(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.items, chatID)
}

// Len возвращает число сессий в таблице
func (t *Sessions) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.items)
}

// Evict удаляет просроченные сессии и возвращает их число
func (t *Sessions) Evict() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, s := range t.items {
		if t.expired(s) {
			delete(t.items, id)
			n++
		}
	}

	return n
}

// Run периодически чистит просроченные сессии до отмены ctx
func (t *Sessions) Run(ctx context.Context) {
	interval := t.ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Evict(); n > 0 {
				t.logger.Debug("🧹 Expired sessions evicted", slog.Int("count", n))
			}
		}
	}
}

func (t *Sessions) expired(s *Session) bool {
	return t.now().Sub(s.UpdatedAt) > t.ttl
}

func (t *Sessions) evictOldest() {
	var (
		oldestID int64
		oldest   time.Time
		found    bool
	)

	for id, s := range t.items {
		if !found || s.UpdatedAt.Before(oldest) {
			oldestID, oldest, found = id, s.UpdatedAt, true
		}
	}

	if found {
		delete(t.items, oldestID)
		t.logger.Debug("🧹 Session evicted, table full", slog.Int64("chat_id", oldestID))
	}
}
