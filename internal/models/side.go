package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Side - направление позиции
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

var sideAliases = map[string]Side{
	"long":  SideLong,
	"l":     SideLong,
	"buy":   SideLong,
	"롱":     SideLong,
	"short": SideShort,
	"s":     SideShort,
	"sell":  SideShort,
	"숏":     SideShort,
}

// ParseSide разбирает ввод пользователя. Комбинированные формы вида "롱/long"
// допустимы, если все части указывают на одно направление.
func ParseSide(text string) (Side, error) {
	parts := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(text)), func(r rune) bool {
		return r == '/' || r == ' ' || r == ','
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("empty side")
	}

	var side Side
	for _, p := range parts {
		s, ok := sideAliases[p]
		if !ok {
			return "", fmt.Errorf("unknown side %q", text)
		}

		if side != "" && s != side {
			return "", fmt.Errorf("ambiguous side %q", text)
		}

		side = s
	}

	return side, nil
}

func (s Side) String() string {
	return string(s)
}

// Label - подпись для итоговых сообщений
func (s Side) Label() string {
	switch s {
	case SideLong:
		return "Long"
	case SideShort:
		return "Short"
	default:
		return string(s)
	}
}

// Value implements driver.Valuer.
func (s Side) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *Side) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*s = Side(v)
	case []byte:
		*s = Side(v)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("cannot scan %T into Side", src)
	}

	return nil
}
