package alias

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"tg_journal/internal/storage"
)

var adjectives = []string{
	"Blazing", "Swift", "Sharp", "Tough", "Cold", "Hot", "Quick", "Stealthy", "Fiery", "Giant",
	"Slick", "Calm", "Clever", "Ruthless", "Lonely", "Rough", "Fierce", "Legendary", "Cursed",
	"Cute", "Quirky", "Fresh", "Proud", "Seasoned",
}

var animals = []string{
	"Bear", "Tiger", "Cobra", "Hawk", "Bull", "Wolf", "Eagle", "Shark", "Panda", "Lion", "Owl",
	"Cat", "Kitten", "Puppy", "Ant", "FireAnt", "HoneyBadger", "Zebra", "Kangaroo", "Chimp",
	"Fox", "Whale", "Dolphin", "Jellyfish", "Penguin", "Seal", "Crow", "Parrot", "Peacock",
	"Sparrow", "Crocodile", "Lizard", "Frog", "Hornet", "Beetle",
}

// Store - хранилище псевдонимов
type Store interface {
	GetAlias(ctx context.Context, userID int64) (string, error)
	CreateAlias(ctx context.Context, userID int64, alias string) (string, error)
}

// Generate собирает псевдоним из случайного прилагательного, животного
// и последних четырёх цифр id пользователя
func Generate(userID int64) string {
	return generate(userID, rand.IntN)
}

func generate(userID int64, intn func(int) int) string {
	digits := strconv.FormatInt(userID, 10)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}

	return fmt.Sprintf("%s%s-%s", adjectives[intn(len(adjectives))], animals[intn(len(animals))], digits)
}

// Service выдаёт псевдонимы пользователям
type Service struct {
	store    Store
	generate func(int64) string
	logger   *slog.Logger
}

// NewService создает Service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		generate: Generate,
		logger:   logger,
	}
}

// GetOrCreate возвращает псевдоним пользователя, создавая его при первом обращении.
// Созданный псевдоним больше не меняется.
func (s *Service) GetOrCreate(ctx context.Context, userID int64) (string, error) {
	alias, err := s.store.GetAlias(ctx, userID)
	if err == nil {
		return alias, nil
	}
	if !errors.Is(err, storage.ErrAliasNotFound) {
		return "", err
	}

	alias, err = s.store.CreateAlias(ctx, userID, s.generate(userID))
	if err != nil {
		return "", err
	}

	s.logger.Debug("🏷 Alias assigned",
		slog.Int64("user_id", userID),
		slog.String("alias", alias))

	return alias, nil
}

// Resolve возвращает псевдоним без создания нового
func (s *Service) Resolve(ctx context.Context, userID int64) (string, bool) {
	alias, err := s.store.GetAlias(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrAliasNotFound) {
			s.logger.Warn("⚠️ Failed to resolve alias",
				slog.Int64("user_id", userID),
				slog.Any("error", err))
		}
		return "", false
	}

	return alias, true
}
