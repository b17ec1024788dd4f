package datasource

import (
	"context"
	"fmt"
	"math"

	"saham-bot/internal/logger"
	"saham-bot/internal/store"
	"saham-bot/internal/ta"
	"saham-bot/internal/types"
)

// BarSource provides OHLCV history for a symbol.
type BarSource interface {
	History(ctx context.Context, symbol, exchange, resolution string, nBars int) ([]types.Bar, error)
}

// Levels always come from the previous completed daily bar.
const (
	levelsResolution = "D"
	levelsBars       = 3
)

// Service answers quote requests, consulting the cache before the provider.
type Service struct {
	src         BarSource
	cache       *Cache
	exchange    string
	interval    string
	resolution  string
	bars        int
	indexSymbol string
}

// NewService wires a quote service from the datafeed source and cache.
func NewService(src BarSource, cache *Cache, cfg *store.Config) *Service {
	return &Service{
		src:         src,
		cache:       cache,
		exchange:    cfg.TradingView.Exchange,
		interval:    cfg.TradingView.Interval,
		resolution:  cfg.Resolution(),
		bars:        cfg.TradingView.Bars,
		indexSymbol: cfg.IndexSymbol,
	}
}

// Quote returns a snapshot with support/resistance levels for symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*types.QuoteResult, error) {
	key := fmt.Sprintf("%s:%s:%s", s.exchange, symbol, s.interval)
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*types.QuoteResult, error) {
		return s.fetch(ctx, symbol, true)
	})
}

// Index returns a snapshot for the configured index symbol, without levels.
func (s *Service) Index(ctx context.Context) (*types.QuoteResult, error) {
	key := fmt.Sprintf("%s:%s:%s:index", s.exchange, s.indexSymbol, s.interval)
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*types.QuoteResult, error) {
		return s.fetch(ctx, s.indexSymbol, false)
	})
}

func (s *Service) fetch(ctx context.Context, symbol string, withLevels bool) (*types.QuoteResult, error) {
	timer := logger.StartOperation(ctx, "datasource.fetch", "symbol", symbol, "interval", s.interval)
	bars, err := s.src.History(ctx, symbol, s.exchange, s.resolution, s.bars)
	if err != nil {
		timer.EndWithError(err, "symbol", symbol)
		return nil, err
	}
	timer.End("bars", len(bars))

	last := bars[len(bars)-1]
	res := &types.QuoteResult{
		Symbol:    symbol,
		Exchange:  s.exchange,
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		Close:     last.Close,
		Vol:       last.Vol,
		PrevClose: math.NaN(),
		Timestamp: last.Time().Format("2006-01-02 15:04:05"),
	}
	if len(bars) > 1 {
		res.PrevClose = bars[len(bars)-2].Close
	}

	if withLevels {
		levels, err := s.fetchLevels(ctx, symbol)
		if err != nil {
			// A quote without S/R is still useful; degrade instead of failing.
			logger.Warn(ctx, "Support/resistance unavailable", "symbol", symbol, "error", err)
		} else {
			res.Levels = levels
		}
	}

	return res, nil
}

// fetchLevels computes floor pivots from the previous completed daily bar.
func (s *Service) fetchLevels(ctx context.Context, symbol string) (*types.Levels, error) {
	bars, err := s.src.History(ctx, symbol, s.exchange, levelsResolution, levelsBars)
	if err != nil {
		return nil, err
	}

	// The last bar may still be forming; use the one before it when we can.
	idx := len(bars) - 1
	if len(bars) > 1 {
		idx = len(bars) - 2
	}
	bar := bars[idx]

	s1, s2, s3, r1, r2, r3 := ta.PivotLevels(bar.High, bar.Low, bar.Close)
	if math.IsNaN(s1) {
		return nil, fmt.Errorf("degenerate daily bar for %s", symbol)
	}

	return &types.Levels{
		S1: s1, S2: s2, S3: s3,
		R1: r1, R2: r2, R3: r3,
		BarTime: bar.Time().Format("2006-01-02 15:04:05"),
	}, nil
}
