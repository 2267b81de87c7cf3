package till

import (
	"fmt"
	"strings"
	"time"
)

// Periodos soportados por el resumen.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodThisWeek  = "thisWeek"
	PeriodThisMonth = "thisMonth"
	PeriodThisYear  = "thisYear"
	PeriodDay       = "day"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodYear      = "year"
)

// StartOfDay 00:00 del día de t en su zona horaria.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Window devuelve el rango [from, to] de un periodo a partir de now.
// Los periodos "this*" son calendario (semana inicia lunes); day/week/month/year son ventanas móviles.
// yesterday es el único que no termina en now: [inicio de ayer, inicio de hoy).
func Window(period string, now time.Time) (from, to time.Time, err error) {
	today := StartOfDay(now)
	switch strings.TrimSpace(period) {
	case "", PeriodToday:
		return today, now, nil
	case PeriodYesterday:
		return today.AddDate(0, 0, -1), today.Add(-time.Nanosecond), nil
	case PeriodThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), now, nil
	case PeriodThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now, nil
	case PeriodThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), now, nil
	case PeriodDay:
		return now.Add(-24 * time.Hour), now, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonth:
		return now.AddDate(0, -1, 0), now, nil
	case PeriodYear:
		return now.AddDate(-1, 0, 0), now, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("periodo desconocido %q", period)
}
