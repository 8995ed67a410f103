package domain

import (
	"strings"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

// Filter returns the instruments whose symbol or name contains query,
// ignoring case. A blank query matches everything.
func Filter(instruments []entity.Instrument, query string) []entity.Instrument {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]entity.Instrument, 0, len(instruments))
	for _, ins := range instruments {
		if q == "" ||
			strings.Contains(strings.ToLower(ins.Symbol), q) ||
			strings.Contains(strings.ToLower(ins.Name), q) {
			out = append(out, ins)
		}
	}
	return out
}
