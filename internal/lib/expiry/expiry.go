// Package expiry содержит чистые функции расчёта момента окончания подписки
// и классификации её статуса. Пакет не выполняет I/O и детерминирован:
// одинаковый ввод всегда даёт одинаковый результат.
package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status — статус подписки относительно текущего момента.
type Status string

const (
	// StatusActive — до окончания больше порога.
	StatusActive Status = "Active"
	// StatusExpiring — окончание наступит раньше порога.
	StatusExpiring Status = "Expiring"
	// StatusExpired — момент окончания уже наступил.
	StatusExpired Status = "Expired"
)

// DefaultThreshold — порог статуса Expiring по умолчанию, 7 дней.
const DefaultThreshold = 7 * 24 * time.Hour

// DefaultStartTime подставляется вместо отсутствующего времени начала.
const DefaultStartTime = "00:00"

const layout = "2006-01-02 15:04"

// ComputeEndDate вычисляет момент окончания: startDate+startTime плюс days
// календарных дней и hours часов. Дни добавляются через AddDate, то есть
// с учётом границ месяцев, часы — фиксированной длительностью.
// Пустой startTime трактуется как полночь.
func ComputeEndDate(startDate, startTime string, days, hours int) (time.Time, error) {
	if startTime == "" {
		startTime = DefaultStartTime
	}
	start, err := time.Parse(layout, startDate+" "+startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("expiry.ComputeEndDate: %w", err)
	}
	return start.AddDate(0, 0, days).Add(time.Duration(hours) * time.Hour), nil
}

// Classify относит пару (now, end) ровно к одному из трёх статусов.
// end <= now — Expired, 0 < end-now < threshold — Expiring, иначе Active.
func Classify(now, end time.Time, threshold time.Duration) Status {
	if !end.After(now) {
		return StatusExpired
	}
	if end.Sub(now) < threshold {
		return StatusExpiring
	}
	return StatusActive
}

// FormatRemaining форматирует оставшееся время в виде "2d 5h 30m 12s".
// Для истёкших записей возвращается литерал "Expired".
func FormatRemaining(now, end time.Time) string {
	if !end.After(now) {
		return "Expired"
	}
	d := end.Sub(now)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// CoerceInt приводит произвольное JSON-значение срока к неотрицательному
// целому. Нечисловой или отрицательный ввод даёт 0, а не ошибку.
func CoerceInt(v any) int {
	var n int
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// CoerceIntDefault ведёт себя как CoerceInt, но отсутствующее значение (nil)
// заменяет на def. Используется при продлении, где срок по умолчанию 30 дней.
func CoerceIntDefault(v any, def int) int {
	if v == nil {
		return def
	}
	return CoerceInt(v)
}
