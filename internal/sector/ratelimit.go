package sector

import (
	"sync"
	"time"
)

const (
	DefaultCategoryCooldown = 60 * time.Second
	DefaultGlobalGap        = time.Second
)

// Limiter ограничивает обращения к внешнему API: не чаще одного вызова
// на категорию за cooldown и не чаще одного вызова вообще за gap
type Limiter struct {
	mu         sync.Mutex
	cooldown   time.Duration
	gap        time.Duration
	now        func() time.Time
	lastByKey  map[string]time.Time
	lastGlobal time.Time
}

// NewLimiter создает Limiter. now - источник времени, nil означает time.Now.
func NewLimiter(cooldown, gap time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}

	return &Limiter{
		cooldown:  cooldown,
		gap:       gap,
		now:       now,
		lastByKey: make(map[string]time.Time),
	}
}

// Reserve резервирует вызов для категории. ok == false, если категория ещё
// на cooldown. Иначе wait - сколько нужно подождать до вызова: остаток gap
// после предыдущего зарезервированного вызова.
func (l *Limiter) Reserve(category string) (wait time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, seen := l.lastByKey[category]; seen && now.Sub(last) < l.cooldown {
		return 0, false
	}

	at := now
	if !l.lastGlobal.IsZero() {
		if next := l.lastGlobal.Add(l.gap); next.After(now) {
			at = next
		}
	}

	l.lastByKey[category] = at
	l.lastGlobal = at

	return at.Sub(now), true
}
