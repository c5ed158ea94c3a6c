package sector

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mapping связывает символы секторных индексов с категориями CoinGecko
// и их отображаемыми именами
type Mapping struct {
	// символ индекса -> id категории CoinGecko
	Categories map[string]string `yaml:"categories"`
	// id категории -> название в сообщении о топе монет
	DisplayNames map[string]string `yaml:"display_names"`
	// символ индекса -> название сектора в сообщении об изменении
	SectorNames map[string]string `yaml:"sector_names"`
}

// DefaultMapping возвращает встроенное сопоставление секторов
func DefaultMapping() Mapping {
	return Mapping{
		Categories: map[string]string{
			"SOLANA.C":       "solana-ecosystem",
			"BNBCHAIN.C":     "binance-smart-chain",
			"ETHEREUM.C":     "ethereum-ecosystem",
			"STABLE.C":       "stablecoins",
			"STABLE.C.D":     "stablecoins",
			"LAYER1.C":       "layer-1",
			"DEPIN.C":        "depin",
			"MEME.C":         "meme-token",
			"EXCHANGES.C":    "centralized-exchange-token-cex",
			"AI.C":           "artificial-intelligence",
			"RWA.C":          "real-world-assets-rwa",
			"WORLDLIBERTY.C": "world-liberty-financial-portfolio",
			"POLKADOT.C":     "dot-ecosystem",
		},
		DisplayNames: map[string]string{
			"ethereum-ecosystem":             "Ethereum ECO",
			"solana-ecosystem":               "Solana ECO",
			"binance-smart-chain":            "BNB Chain ECO",
			"meme-token":                     "Meme",
			"depin":                          "DePIN",
			"artificial-intelligence":        "AI",
			"layer-1":                        "Layer1",
			"centralized-exchange-token-cex": "Exchanges",
			"real-world-assets-rwa":          "RWA",
			"dot-ecosystem":                  "POLKADOT",
		},
		SectorNames: map[string]string{
			"SOLANA.C":       "Solana",
			"ETHEREUM.C":     "Ethereum",
			"WORLDLIBERTY.C": "World Liberty Portfolio",
			"EXCHANGES.C":    "Exchanges",
			"LAYER1.C":       "Layer1",
			"BNBCHAIN.C":     "BNB",
			"RWA.C":          "RWA",
			"MEME.C":         "MEME",
			"DEPIN.C":        "DEPIN",
			"AI.C":           "AI",
			"POLKADOT.C":     "Polkadot",
		},
	}
}

// LoadMapping читает YAML файл и накладывает его поверх встроенного сопоставления.
// Пустой путь возвращает встроенное сопоставление.
func LoadMapping(path string) (Mapping, error) {
	m := DefaultMapping()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read sectors file: %w", err)
	}

	var override Mapping
	if err := yaml.Unmarshal(data, &override); err != nil {
		return m, fmt.Errorf("parse sectors file: %w", err)
	}

	maps.Copy(m.Categories, upperKeys(override.Categories))
	maps.Copy(m.DisplayNames, override.DisplayNames)
	maps.Copy(m.SectorNames, upperKeys(override.SectorNames))

	return m, nil
}

// Category возвращает категорию CoinGecko для символа индекса
func (m Mapping) Category(symbol string) (string, bool) {
	c, ok := m.Categories[strings.ToUpper(strings.TrimSpace(symbol))]
	return c, ok
}

// DisplayName возвращает отображаемое имя категории, по умолчанию сам id
func (m Mapping) DisplayName(category string) string {
	if name, ok := m.DisplayNames[category]; ok {
		return name
	}

	return category
}

// SectorName возвращает название сектора, по умолчанию сам символ
func (m Mapping) SectorName(symbol string) string {
	if name, ok := m.SectorNames[strings.ToUpper(symbol)]; ok {
		return name
	}

	return symbol
}

func upperKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}

	return out
}
