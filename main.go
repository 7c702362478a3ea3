package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solswap-classifier/quoteprice"
	"github.com/franco-bianco/solswap-classifier/solanatx"
	"github.com/franco-bianco/solswap-classifier/swapclass"
)

type classifyReq struct {
	Signature string `json:"signature"`
}

// classifyResp carries exactly one of the three outcomes.
type classifyResp struct {
	Swap      *swapclass.SwapRecord    `json:"swap,omitempty"`
	Split     *swapclass.SplitSwapPair `json:"split,omitempty"`
	Rejection *swapclass.Rejection     `json:"rejection,omitempty"`
	Envelope  interface{}              `json:"envelope,omitempty"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSONMaybePretty(w http.ResponseWriter, status int, v interface{}, pretty bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

// configFromEnv assembles the classifier config with env overrides on top of
// the defaults, and wires the Binance-backed pricer for the value filter.
func configFromEnv(log *logrus.Logger) swapclass.Config {
	cfg := swapclass.DefaultConfig()

	if v := os.Getenv("SOLANA_USDC_CONTRACT_ADDRESS"); v != "" {
		cfg.CoreAssets[v] = struct{}{}
	}
	if v := os.Getenv("SOLANA_USDT_CONTRACT_ADDRESS"); v != "" {
		cfg.CoreAssets[v] = struct{}{}
	}
	if extra := os.Getenv("SWAP_CORE_ASSET_MINTS"); extra != "" {
		for _, mint := range strings.Split(extra, ",") {
			if mint = strings.TrimSpace(mint); mint != "" {
				cfg.CoreAssets[mint] = struct{}{}
			}
		}
	}
	if v := os.Getenv("SWAP_MIN_QUOTE_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.MinQuoteUSD = f
		} else {
			log.Warnf("ignoring invalid SWAP_MIN_QUOTE_USD=%q", v)
		}
	}

	cfg.Pricer = quoteprice.NewPricer(log)
	return cfg
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	if os.Getenv("DEBUG") == "true" {
		log.SetLevel(logrus.DebugLevel)
	}

	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		log.Fatal("SOLANA_RPC_URL is not set")
	}
	const rpcTimeout = 10 * time.Second

	// Shared Solana RPC client (safe for concurrent use)
	client := rpc.New(rpcURL)

	classifier := swapclass.New(configFromEnv(log))

	// Health endpoint
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Simple HTML form for browser use (GET)
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`
<!doctype html>
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Solana Swap Classifier</title>
<div style="font: 16px system-ui; max-width: 900px; margin: 40px auto; line-height:1.5;">
  <h1 style="margin:0 0 16px;">Solana Swap Classifier (browser)</h1>
  <form action="/classify" method="get">
    <label>Signature<br>
      <input name="signature" style="width: 100%; padding: 8px;" placeholder="Paste a transaction signature" autofocus>
    </label>
    <div style="margin: 12px 0;">
      <label><input type="checkbox" name="pretty" value="1" checked> pretty</label>
      <label style="margin-left: 12px;"><input type="checkbox" name="envelope" value="1"> include envelope</label>
    </div>
    <button type="submit" style="padding: 8px 14px;">Classify</button>
  </form>
  <p style="margin-top: 24px; color:#666;">This form issues a GET to <code>/classify?signature=...&pretty=1</code>.</p>
</div>
`))
	})

	// Classify endpoint: supports POST (JSON) and GET (?signature=...&pretty=1)
	http.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		pretty := r.URL.Query().Get("pretty") == "1" || r.URL.Query().Get("pretty") == "true"
		includeEnvelope := r.URL.Query().Get("envelope") == "1" || r.URL.Query().Get("envelope") == "true"

		// Accept POST with JSON body or GET with query param
		var sigStr string
		switch r.Method {
		case http.MethodPost:
			var req classifyReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "invalid JSON body"}, pretty)
				return
			}
			sigStr = req.Signature
		case http.MethodGet:
			sigStr = r.URL.Query().Get("signature")
		default:
			writeJSONMaybePretty(w, http.StatusMethodNotAllowed, apiError{Error: "method_not_allowed"}, pretty)
			return
		}

		if sigStr == "" {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "signature is required"}, pretty)
			return
		}

		// Validate base58 signature without panicking
		var sig solana.Signature
		var sigErr error
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					sigErr = errors.New("invalid signature format")
				}
			}()
			sig = solana.MustSignatureFromBase58(sigStr)
		}()
		if sigErr != nil {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "invalid signature (base58)"}, pretty)
			return
		}

		// Per-request RPC timeout
		ctx, cancel := context.WithTimeout(r.Context(), rpcTimeout)
		defer cancel()

		tx, err := client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: pointer.ToUint64(0),
		})
		if err != nil {
			low := strings.ToLower(err.Error())
			if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "deadline") || strings.Contains(low, "timeout") {
				writeJSONMaybePretty(w, http.StatusGatewayTimeout, apiError{Error: "rpc_timeout"}, pretty)
				return
			}
			writeJSONMaybePretty(w, http.StatusBadGateway, apiError{Error: "rpc_error", Details: err.Error()}, pretty)
			return
		}
		if tx == nil {
			writeJSONMaybePretty(w, http.StatusNotFound, apiError{Error: "not_found", Details: "transaction not found"}, pretty)
			return
		}

		adapter, err := solanatx.NewAdapter(tx)
		if err != nil {
			writeJSONMaybePretty(w, http.StatusUnprocessableEntity, apiError{Error: "adapter_init_error", Details: err.Error()}, pretty)
			return
		}
		env, err := adapter.Envelope()
		if err != nil {
			writeJSONMaybePretty(w, http.StatusUnprocessableEntity, apiError{Error: "envelope_error", Details: err.Error()}, pretty)
			return
		}

		traceCtx := swapclass.WithDebug(r.Context(), func(format string, args ...interface{}) {
			log.Debugf(format, args...)
		})
		outcome, err := classifier.Classify(traceCtx, env)
		if err != nil {
			writeJSONMaybePretty(w, http.StatusUnprocessableEntity, apiError{Error: "classify_error", Details: err.Error()}, pretty)
			return
		}

		resp := classifyResp{}
		switch o := outcome.(type) {
		case *swapclass.SwapRecord:
			resp.Swap = o
		case *swapclass.SplitSwapPair:
			resp.Split = o
		case *swapclass.Rejection:
			resp.Rejection = o
		}
		if includeEnvelope {
			resp.Envelope = env
		}
		writeJSONMaybePretty(w, http.StatusOK, resp, pretty)
	})

	// HTTP server settings
	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Infof("listening on http://%s (per-request rpc timeout=%s)", addr, rpcTimeout)
	log.Fatal(srv.ListenAndServe())
}
