package quoteprice

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solswap-classifier/swapclass"
)

// Pricer implements swapclass.QuotePricer: stablecoins at par, the native
// currency from the Binance minute close with a short in-process cache.
// Assets outside those sets report no price, which makes the classifier skip
// its value filter rather than guess.
type Pricer struct {
	stables   map[string]struct{}
	solAssets map[string]struct{}

	ttl time.Duration
	Log *logrus.Logger

	mu      sync.Mutex
	cached  float64
	fetched time.Time
}

func NewPricer(log *logrus.Logger) *Pricer {
	if log == nil {
		log = logrus.New()
	}
	return &Pricer{
		stables: map[string]struct{}{
			swapclass.USDCMint: {},
			swapclass.USDTMint: {},
		},
		solAssets: map[string]struct{}{
			swapclass.NativeSOL:  {},
			swapclass.WrappedSOL: {},
		},
		ttl: time.Minute,
		Log: log,
	}
}

func (p *Pricer) QuoteUSD(asset string, amount float64) (float64, bool) {
	if _, ok := p.stables[asset]; ok {
		return amount, true
	}
	if _, ok := p.solAssets[asset]; ok {
		px, err := p.solUSD()
		if err != nil {
			p.Log.Warnf("sol price lookup failed, value filter will be skipped: %s", err)
			return 0, false
		}
		return amount * px, true
	}
	return 0, false
}

func (p *Pricer) solUSD() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached > 0 && time.Since(p.fetched) < p.ttl {
		return p.cached, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	px, err := SOLPriceAtTime(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		// Serve a stale price over no price at all.
		if p.cached > 0 {
			return p.cached, nil
		}
		return 0, err
	}
	p.cached = px
	p.fetched = time.Now()
	return px, nil
}
