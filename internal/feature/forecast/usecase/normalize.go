package usecase

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

// Placeholders for fields the model omitted or sent with the wrong type.
const (
	UnknownSymbol      = "???"
	UnknownName        = "Unknown Asset"
	DefaultTargetDate  = "7 days out"
	DefaultReason      = "Trending market momentum."
	DefaultSector      = "Uncategorized"
	DefaultSourceTitle = "Market Verification"
	DefaultSourceURI   = "https://google.com/finance"
)

// arrayLiteral matches the first "[{" through the last "}]" in a reply.
var arrayLiteral = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// ExtractArray recovers the JSON array of instrument objects from model text.
// The whole text is tried first, then the widest "[{...}]" literal, then every
// bracket-balanced array that opens with an object.
func ExtractArray(text string) ([]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyResponse
	}
	if out, ok := decodeArray(text); ok {
		return out, nil
	}
	if m := arrayLiteral.FindString(text); m != "" {
		if out, ok := decodeArray(m); ok {
			return out, nil
		}
	}
	for start := strings.IndexByte(text, '['); start >= 0; {
		if candidate := balancedArray(text[start:]); candidate != "" {
			if out, ok := decodeArray(candidate); ok {
				return out, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, domain.ErrParse
}

// decodeArray succeeds only when s is exactly one JSON array.
func decodeArray(s string) ([]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var out []any
	if err := dec.Decode(&out); err != nil || out == nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return out, true
}

// balancedArray returns the prefix of s that closes the array opened at s[0],
// provided its first element is an object. Brackets inside strings are ignored.
func balancedArray(s string) string {
	rest := strings.TrimLeft(s[1:], " \t\r\n")
	if !strings.HasPrefix(rest, "{") {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// NormalizeInstruments converts untrusted array elements into instruments.
// It never fails: bad fields take placeholders and bad numbers become 0.
// fallbackDate is used when an element has no currentPriceDate.
func NormalizeInstruments(raw []any, fallbackDate string) []entity.Instrument {
	out := make([]entity.Instrument, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeInstrument(r, fallbackDate))
	}
	return out
}

func normalizeInstrument(raw any, fallbackDate string) entity.Instrument {
	// A non-object element yields a nil map, so every lookup falls back.
	obj, _ := raw.(map[string]any)

	current := toPrice(obj["currentPrice"])
	target := toPrice(obj["targetPrice"])
	return entity.Instrument{
		Symbol:           stringField(obj, "symbol", UnknownSymbol),
		Name:             stringField(obj, "name", UnknownName),
		CurrentPrice:     current,
		CurrentPriceDate: stringField(obj, "currentPriceDate", fallbackDate),
		TargetPrice:      target,
		TargetPriceDate:  stringField(obj, "targetPriceDate", DefaultTargetDate),
		GainPercentage:   entity.GainPercentage(current, target),
		Reason:           stringField(obj, "reason", DefaultReason),
		Sector:           stringField(obj, "sector", DefaultSector),
	}
}

func stringField(obj map[string]any, key, fallback string) string {
	s, ok := obj[key].(string)
	if !ok {
		return fallback
	}
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

// toPrice coerces a JSON value to a non-negative finite number, or 0.
func toPrice(v any) float64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = n
	case bool:
		if x {
			f = 1
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// DedupeBySymbol keeps one instrument per symbol. A later duplicate replaces
// the earlier value but keeps the earlier position.
func DedupeBySymbol(in []entity.Instrument) []entity.Instrument {
	index := make(map[string]int, len(in))
	out := make([]entity.Instrument, 0, len(in))
	for _, ins := range in {
		if i, ok := index[ins.Symbol]; ok {
			out[i] = ins
			continue
		}
		index[ins.Symbol] = len(out)
		out = append(out, ins)
	}
	return out
}

// NormalizeSources fills missing citation fields. The result is never nil.
func NormalizeSources(citations []entity.Citation) []entity.Source {
	out := make([]entity.Source, 0, len(citations))
	for _, c := range citations {
		src := entity.Source{Title: strings.TrimSpace(c.Title), URI: strings.TrimSpace(c.URI)}
		if src.Title == "" {
			src.Title = DefaultSourceTitle
		}
		if src.URI == "" {
			src.URI = DefaultSourceURI
		}
		out = append(out, src)
	}
	return out
}
