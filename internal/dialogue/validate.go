package dialogue

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errEmpty       = errors.New("empty input")
	errNotNumber   = errors.New("not a number")
	errNotPositive = errors.New("must be greater than zero")
)

// parseNumber разбирает конечное число. Допускаются суффиксы "x" и "%".
func parseNumber(text string) (float64, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "%")
	text = strings.TrimRight(text, "xX")
	text = strings.TrimSpace(text)

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}

	return v, nil
}

func parsePositive(text string) (float64, error) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errNotPositive
	}

	return v, nil
}

func parseText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmpty
	}

	return text, nil
}

func parseSymbol(text string) (string, error) {
	s, err := parseText(text)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(s), nil
}
