package storage

import (
	"fmt"
	"strings"
	"time"
)

// SwingStatus фильтрует swing сделки по состоянию
type SwingStatus int

const (
	StatusAny SwingStatus = iota
	StatusOpen
	StatusClosed
)

// TradeQuery - фильтр выборки сделок
type TradeQuery struct {
	UserID *int64
	Since  time.Time
	Until  time.Time
	// Status учитывается только для swing сделок
	Status SwingStatus
	Desc   bool
	Limit  int
}

// ForUser ограничивает выборку одним пользователем
func (q TradeQuery) ForUser(userID int64) TradeQuery {
	q.UserID = &userID
	return q
}

// tableSpec описывает колонки таблицы сделок для построения запроса
type tableSpec struct {
	idCol    string
	timeCol  string
	orderCol string
	swing    bool
}

// build собирает запрос с плейсхолдерами "?"; вызывающий делает Rebind
func (q TradeQuery) build(base string, t tableSpec) (string, []any) {
	var (
		where []string
		args  []any
	)

	if q.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *q.UserID)
	}
	if !q.Since.IsZero() {
		where = append(where, t.timeCol+" >= ?")
		args = append(args, q.Since.UTC())
	}
	if !q.Until.IsZero() {
		where = append(where, t.timeCol+" < ?")
		args = append(args, q.Until.UTC())
	}
	if t.swing {
		switch q.Status {
		case StatusOpen:
			where = append(where, "exit_price IS NULL")
		case StatusClosed:
			where = append(where, "exit_price IS NOT NULL")
		}
	}

	var sb strings.Builder
	sb.WriteString(base)

	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, "\n\t\tORDER BY %s %s, %s %s", t.orderCol, dir, t.idCol, dir)

	if q.Limit > 0 {
		sb.WriteString("\n\t\tLIMIT ?")
		args = append(args, q.Limit)
	}

	return sb.String(), args
}
