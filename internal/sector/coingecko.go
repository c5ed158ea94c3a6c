package sector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

var ErrRateLimited = errors.New("coingecko: rate limited")

// Coin - строка ответа /coins/markets
type Coin struct {
	ID             string   `json:"id"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	CurrentPrice   float64  `json:"current_price"`
	PriceChange24h *float64 `json:"price_change_percentage_24h"`
}

// Change24h возвращает изменение за 24 часа, 0 если CoinGecko его не прислал
func (c Coin) Change24h() float64 {
	if c.PriceChange24h == nil {
		return 0
	}

	return *c.PriceChange24h
}

// CoinGecko - клиент публичного API CoinGecko
type CoinGecko struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewCoinGecko создает клиент. Пустой baseURL означает публичный API.
func NewCoinGecko(baseURL string, client *http.Client, logger *slog.Logger) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}

	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Markets возвращает до 50 монет категории, отсортированных по изменению за 24 часа.
// Ответ 429 возвращается как ErrRateLimited.
func (c *CoinGecko) Markets(ctx context.Context, category string) ([]Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("category", category)
	params.Set("order", "price_change_percentage_24h_desc")
	params.Set("per_page", "50")
	params.Set("page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/markets?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko markets: unexpected status %d", resp.StatusCode)
	}

	var coins []Coin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}

	c.logger.Debug("🦎 CoinGecko markets loaded",
		slog.String("category", category),
		slog.Int("coins", len(coins)))

	return coins, nil
}

// TopMovers сортирует монеты по изменению за 24 часа по убыванию, убирает
// повторы символов и возвращает первые n
func TopMovers(coins []Coin, n int) []Coin {
	sorted := append([]Coin(nil), coins...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Change24h() > sorted[j].Change24h()
	})

	seen := make(map[string]bool)
	out := make([]Coin, 0, n)

	for _, c := range sorted {
		if len(out) == n {
			break
		}

		sym := strings.ToUpper(c.Symbol)
		if seen[sym] {
			continue
		}
		seen[sym] = true

		out = append(out, c)
	}

	return out
}
