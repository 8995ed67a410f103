// Package card maps forecast instruments to display-ready cards.
package card

import (
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

const (
	// MaxNameRunes is the display width of an instrument name.
	MaxNameRunes = 24
	// MaxSourceTitleRunes is the display width of a source title.
	MaxSourceTitleRunes = 48
	// MaxSources is the number of sources shown under the cards.
	MaxSources = 5

	ellipsis = "…"
)

var printer = message.NewPrinter(language.English)

// Card is the visual summary of one instrument.
type Card struct {
	Rank             int
	RankLabel        string
	Symbol           string
	Name             string
	Sector           string
	CurrentPrice     string
	CurrentPriceDate string
	TargetPrice      string
	TargetPriceDate  string
	Reason           string
	GainLabel        string
	// Positive selects the gain treatment; everything else uses the loss treatment.
	Positive bool
}

// Render builds the card of ins at a 1-based rank. It has no side effects.
func Render(ins entity.Instrument, rank int) Card {
	return Card{
		Rank:             rank,
		RankLabel:        fmt.Sprintf("#%d", rank),
		Symbol:           ins.Symbol,
		Name:             Truncate(ins.Name, MaxNameRunes),
		Sector:           ins.Sector,
		CurrentPrice:     FormatPrice(ins.CurrentPrice),
		CurrentPriceDate: ins.CurrentPriceDate,
		TargetPrice:      FormatPrice(ins.TargetPrice),
		TargetPriceDate:  ins.TargetPriceDate,
		Reason:           ins.Reason,
		GainLabel:        FormatGain(ins.GainPercentage),
		Positive:         ins.GainPercentage > 0,
	}
}

// RenderAll renders instruments in order, ranked from 1.
func RenderAll(instruments []entity.Instrument) []Card {
	cards := make([]Card, 0, len(instruments))
	for i, ins := range instruments {
		cards = append(cards, Render(ins, i+1))
	}
	return cards
}

// RenderSource shortens a source title for display.
func RenderSource(s entity.Source) entity.Source {
	return entity.Source{Title: Truncate(s.Title, MaxSourceTitleRunes), URI: s.URI}
}

// RenderSources renders at most MaxSources sources.
func RenderSources(sources []entity.Source) []entity.Source {
	n := min(len(sources), MaxSources)
	out := make([]entity.Source, 0, n)
	for _, s := range sources[:n] {
		out = append(out, RenderSource(s))
	}
	return out
}

// Truncate shortens s to at most limit runes, ending in an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + ellipsis
}

// FormatPrice renders a price as US dollars with thousands separators.
func FormatPrice(p float64) string {
	return printer.Sprintf("$%.2f", p)
}

// FormatGain renders a percentage with an explicit sign for gains.
func FormatGain(g float64) string {
	if math.Abs(g) < 0.005 {
		return "0.00%"
	}
	if g > 0 {
		return fmt.Sprintf("+%.2f%%", g)
	}
	return fmt.Sprintf("%.2f%%", g)
}
