package usecase

import (
	"encoding/base64"
	"strings"

	"PortOpt/internal/domain/models"
)

// ParseTickers merges the inline ticker list with the optional uploaded
// CSV and returns a deduplicated, uppercased universe in first-seen
// order.
func ParseTickers(req *models.OptimizeRequest) ([]string, error) {
	raw := make([]string, 0, len(req.Tickers))
	raw = append(raw, req.Tickers...)

	if req.FileContent != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.FileContent)
		if err != nil {
			return nil, &InvalidTickerFileError{Err: err}
		}
		raw = append(raw, splitTickers(string(decoded))...)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		for _, part := range splitTickers(t) {
			ticker := strings.ToUpper(strings.TrimSpace(part))
			if ticker == "" {
				continue
			}
			if _, ok := seen[ticker]; ok {
				continue
			}
			seen[ticker] = struct{}{}
			out = append(out, ticker)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoTickers
	}
	return out, nil
}

func splitTickers(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t', ' ':
			return true
		}
		return false
	})
}
