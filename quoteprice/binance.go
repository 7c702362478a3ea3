package quoteprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

/*
Fetch SOL/USDT "close" price for the 1-minute candle that contains timestamp T.

Binance REST:
  GET /api/v3/klines?symbol=SOLUSDT&interval=1m&startTime=...&endTime=...&limit=1
Times are milliseconds since epoch (UTC).

Env override:
  BINANCE_BASE (default: https://api.binance.com)
*/

const (
	binanceDefaultBase = "https://api.binance.com"
	binanceSymbol      = "SOLUSDT"
	binanceInterval    = "1m"
)

// minuteFloor rounds ms down to the start of its 1-minute window.
func minuteFloor(ms int64) int64 {
	const oneMinMs = int64(60 * 1000)
	return (ms / oneMinMs) * oneMinMs
}

// small HTTP helper with sane timeouts and tiny retry.
type httpClient struct{ c *http.Client }

func newHTTP() *httpClient {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   8 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:     60 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	}
	return &httpClient{
		c: &http.Client{
			Timeout:   10 * time.Second,
			Transport: tr,
		},
	}
}

func (h *httpClient) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := h.c.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				lastErr = json.NewDecoder(resp.Body).Decode(dst)
				return
			}
			var errObj map[string]any
			_ = json.NewDecoder(resp.Body).Decode(&errObj)
			lastErr = fmt.Errorf("http %d: %v", resp.StatusCode, errObj)
		}()
		if lastErr == nil {
			return nil
		}
		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
		}
	}
	return lastErr
}

// SOLPriceAtMillis returns the SOL/USDT close price for the minute containing ms.
func SOLPriceAtMillis(ctx context.Context, ms int64) (float64, error) {
	base := os.Getenv("BINANCE_BASE")
	if base == "" {
		base = binanceDefaultBase
	}

	start := minuteFloor(ms)
	end := start + 60_000 - 1

	u, _ := url.Parse(base)
	u.Path = "/api/v3/klines"
	q := u.Query()
	q.Set("symbol", binanceSymbol)
	q.Set("interval", binanceInterval)
	q.Set("startTime", strconv.FormatInt(start, 10))
	q.Set("endTime", strconv.FormatInt(end, 10))
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	var data [][]any // Binance returns array-of-arrays
	if err := newHTTP().getJSON(ctx, u.String(), &data); err != nil {
		return 0, err
	}
	if len(data) == 0 || len(data[0]) < 5 {
		return 0, fmt.Errorf("no kline for window [%d,%d]", start, end)
	}

	// index 4 is "close"
	switch v := data[0][4].(type) {
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, errors.New("unexpected close type from Binance")
	}
}

// SOLPriceAtTime convenience wrapper for a time.Time.
func SOLPriceAtTime(ctx context.Context, t time.Time) (float64, error) {
	return SOLPriceAtMillis(ctx, t.UTC().UnixMilli())
}
