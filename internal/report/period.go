package report

import (
	"fmt"
	"strings"
	"time"
)

// Period - период отчёта
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod разбирает название периода
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth:
		return p, nil
	}

	return "", fmt.Errorf("unknown report period %q", s)
}

// Window - длина скользящего окна периода
func (p Period) Window() time.Duration {
	if p == PeriodMonth {
		return 30 * 24 * time.Hour
	}

	return 7 * 24 * time.Hour
}

// TopN - размер рейтинга пользователей
func (p Period) TopN() int {
	if p == PeriodMonth {
		return 5
	}

	return 3
}
