package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PortOpt/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func chartBody(symbol string, closes []float64) string {
	base := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC).Unix()
	stamps := make([]string, len(closes))
	prices := make([]string, len(closes))
	volumes := make([]string, len(closes))
	for i, c := range closes {
		stamps[i] = fmt.Sprintf("%d", base+int64(i)*86400)
		prices[i] = fmt.Sprintf("%g", c)
		volumes[i] = "1000000"
	}
	return fmt.Sprintf(
		`{"chart":{"result":[{"meta":{"symbol":%q},"timestamp":[%s],"indicators":{"quote":[{"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		symbol, strings.Join(stamps, ","), strings.Join(prices, ","), strings.Join(volumes, ","))
}

func TestHistoryFetchesAllTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		symbol := parts[len(parts)-1]
		if r.URL.Query().Get("range") != "2y" {
			t.Errorf("unexpected range %q", r.URL.Query().Get("range"))
		}
		switch symbol {
		case "AAA":
			fmt.Fprint(w, chartBody("AAA", []float64{100, 101, 102}))
		case "BBB":
			fmt.Fprint(w, chartBody("BBB", []float64{50, 51, 52}))
		default:
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}
	}))
	defer srv.Close()

	client := NewYahoo(Config{
		ChartURL: srv.URL,
		Period:   "2y",
		Interval: "1d",
		Workers:  2,
	}, nil, testLogger(t))

	series, failures, err := client.History(context.Background(), []string{"AAA", "BBB", "XXX"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if len(failures) != 1 || failures[0].Ticker != "XXX" {
		t.Fatalf("expected XXX failure, got %+v", failures)
	}
	aaa := series["AAA"]
	if len(aaa.Bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(aaa.Bars))
	}
	if aaa.Bars[0].Close != 100 || aaa.Bars[2].Close != 102 {
		t.Fatalf("unexpected closes %+v", aaa.Bars)
	}
	if !aaa.Bars[0].Date.Before(aaa.Bars[1].Date) {
		t.Fatalf("bars not time ordered")
	}
}

func TestHistorySkipsNullBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"AAA"},"timestamp":[1704207600,1704294000,1704380400],"indicators":{"quote":[{"close":[100,null,102],"volume":[1,null,3]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	client := NewYahoo(Config{ChartURL: srv.URL, Period: "2y", Interval: "1d"}, nil, testLogger(t))

	series, failures, err := client.History(context.Background(), []string{"AAA"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("unexpected failures %+v", failures)
	}
	bars := series["AAA"].Bars
	if len(bars) != 2 {
		t.Fatalf("expected null bar dropped, got %d bars", len(bars))
	}
	if bars[0].Close != 100 || bars[1].Close != 102 {
		t.Fatalf("unexpected closes %+v", bars)
	}
}

func TestHistoryAllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewYahoo(Config{ChartURL: srv.URL, Period: "2y", Interval: "1d"}, nil, testLogger(t))

	series, failures, err := client.History(context.Background(), []string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 0 {
		t.Fatalf("expected no series, got %d", len(series))
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
}

func TestMetricsUnitConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAA,BBB" {
			t.Errorf("unexpected symbols %q", got)
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAA","marketCap":2500000000000,"averageDailyVolume3Month":55000000},{"symbol":"BBB","marketCap":800000000,"averageDailyVolume3Month":120000}],"error":null}}`)
	}))
	defer srv.Close()

	client := NewYahoo(Config{QuoteURL: srv.URL}, nil, testLogger(t))

	metrics, err := client.Metrics(context.Background(), []string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m := metrics["AAA"]; m.MarketCap != 2500 || m.AvgVolume != 55 {
		t.Fatalf("unexpected AAA metrics %+v", m)
	}
	if m := metrics["BBB"]; m.MarketCap != 0.8 || m.AvgVolume != 0.12 {
		t.Fatalf("unexpected BBB metrics %+v", m)
	}
}

func TestMetricsEmptyInput(t *testing.T) {
	client := NewYahoo(Config{}, nil, testLogger(t))
	metrics, err := client.Metrics(context.Background(), nil)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(metrics) != 0 {
		t.Fatalf("expected empty map")
	}
}
