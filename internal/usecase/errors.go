package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTickers is returned when neither the inline list nor the
	// uploaded file yields a single ticker.
	ErrNoTickers = errors.New("no tickers provided")
)

// InvalidTickerFileError is returned when the uploaded ticker file is
// not valid base64.
type InvalidTickerFileError struct {
	Err error
}

func (e *InvalidTickerFileError) Error() string {
	return fmt.Sprintf("invalid ticker file: %v", e.Err)
}

func (e *InvalidTickerFileError) Unwrap() error { return e.Err }

// MarketDataError is returned when no usable history could be fetched
// for any requested ticker.
type MarketDataError struct {
	Requested int
	Failed    int
}

func (e *MarketDataError) Error() string {
	return fmt.Sprintf("market data unavailable: %d of %d tickers failed", e.Failed, e.Requested)
}

// EmptyUniverseError is returned when the filter excluded every asset
// that had usable history.
type EmptyUniverseError struct {
	Fetched  int
	Excluded int
}

func (e *EmptyUniverseError) Error() string {
	return fmt.Sprintf("no assets left to optimize: %d fetched, %d excluded by filter", e.Fetched, e.Excluded)
}
