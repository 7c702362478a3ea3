package quoteprice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func klineServer(t *testing.T, closePx interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("symbol") != "SOLUSDT" || q.Get("interval") != "1m" || q.Get("limit") != "1" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		// Binance kline shape: openTime, open, high, low, close, ...
		kline := []interface{}{int64(1700000000000), "200.1", "201.0", "199.5", closePx, "1234.5"}
		_ = json.NewEncoder(w).Encode([][]interface{}{kline})
	}))
}

func Test_SOLPriceAtMillis(t *testing.T) {
	srv := klineServer(t, "200.42")
	defer srv.Close()
	t.Setenv("BINANCE_BASE", srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	price, err := SOLPriceAtMillis(ctx, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("SOLPriceAtMillis err: %v", err)
	}
	if price != 200.42 {
		t.Fatalf("unexpected price: %f", price)
	}
}

func Test_SOLPriceAtMillis_NumericClose(t *testing.T) {
	srv := klineServer(t, 150.5)
	defer srv.Close()
	t.Setenv("BINANCE_BASE", srv.URL)

	price, err := SOLPriceAtMillis(context.Background(), 1700000030000)
	if err != nil {
		t.Fatalf("SOLPriceAtMillis err: %v", err)
	}
	if price != 150.5 {
		t.Fatalf("unexpected price: %f", price)
	}
}

func Test_SOLPriceAtMillis_EmptyWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()
	t.Setenv("BINANCE_BASE", srv.URL)

	if _, err := SOLPriceAtMillis(context.Background(), 1700000030000); err == nil {
		t.Fatal("expected error for empty kline window")
	}
}

func Test_MinuteFloor(t *testing.T) {
	ms := time.Date(2025, 1, 2, 12, 34, 56, 789*1e6, time.UTC).UnixMilli()
	got := minuteFloor(ms)
	want := time.Date(2025, 1, 2, 12, 34, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Fatalf("minuteFloor wrong: want %d got %d", want, got)
	}
}
