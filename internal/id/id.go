package id

import (
	cryptorand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(cryptorand.Reader, 0)
)

// New возвращает ULID для новой сделки.
// ULID сортируются по времени создания, поэтому порядок вставки сохраняется в индексах.
func New() string {
	return NewAt(time.Now())
}

// NewAt возвращает ULID с временной меткой t
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String()
}

// Valid проверяет, что строка является ULID (например, callback data из кнопки)
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
