package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/falseness/market-data-aggregator/internal/book"
	"github.com/falseness/market-data-aggregator/internal/config"
	"github.com/falseness/market-data-aggregator/internal/feed"
)

// Runner is the service runner
// Responsible for wiring the feed into the two book sides and reporting
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	scaler feed.Scaler

	asks *book.Book[book.Ask]
	bids *book.Book[book.Bid]
}

// New creates a service runner
func New(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	rules, err := book.NewRules(
		cfg.Subscription.MinimumAmounts,
		cfg.Subscription.Fallback,
		cfg.Subscription.MaxDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription: %w", err)
	}

	return &Runner{
		cfg:    cfg,
		logger: logger.With("component", "Runner"),
		scaler: feed.NewScaler(cfg.Feed.ScaleExponent),
		asks:   book.New[book.Ask](rules),
		bids:   book.New[book.Bid](rules),
	}, nil
}

// Run runs the service until the feed ends or a signal arrives. Benchmark
// runs are not interrupted by a signal.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Starting aggregator",
		"app", r.cfg.App.Name,
		"mode", r.cfg.Feed.Mode,
		"maxDepth", r.cfg.Subscription.MaxDepth)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			r.logger.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	switch r.cfg.Feed.Mode {
	case "replay":
		return r.runReplay(ctx)
	case "synthetic":
		return r.runSynthetic(ctx)
	case "live":
		return r.runLive(ctx)
	default:
		return fmt.Errorf("unknown feed mode %q", r.cfg.Feed.Mode)
	}
}

// apply routes one scaled update into the matching side.
func (r *Runner) apply(u feed.Update) error {
	price, amount, err := r.scaler.ScaleUpdate(u)
	if err != nil {
		return fmt.Errorf("update at platform time %d: %w", u.PlatformTime, err)
	}
	switch u.Side {
	case feed.SideBid:
		r.bids.SetQuote(price, amount)
	case feed.SideAsk:
		r.asks.SetQuote(price, amount)
	default:
		return fmt.Errorf("update at platform time %d: unknown side %q", u.PlatformTime, u.Side)
	}

	// A single venue's book must never cross.
	bestAsk, askOK := r.asks.Best()
	bestBid, bidOK := r.bids.Best()
	if askOK && bidOK && bestAsk.Price <= bestBid.Price {
		r.logger.Warn("Book crossed",
			"bestAsk", bestAsk.Price,
			"bestBid", bestBid.Price)
	}
	return nil
}

func (r *Runner) runReplay(ctx context.Context) error {
	updates, err := feed.ReadFile(r.cfg.Feed.Path)
	if err != nil {
		return err
	}
	r.logger.Info("Feed file loaded", "path", r.cfg.Feed.Path, "updates", len(updates))

	if r.cfg.Bench.Enabled {
		return r.benchmark(updates)
	}

	start := time.Now()
	for _, u := range updates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.apply(u); err != nil {
			return err
		}
	}
	r.logger.Info("Replay finished",
		"updates", len(updates),
		"elapsed", time.Since(start))
	r.report()
	return nil
}

func (r *Runner) runSynthetic(ctx context.Context) error {
	gen := feed.NewSynthetic(r.cfg.Feed.Seed, r.cfg.Feed.PriceSpan, r.cfg.Feed.AmountSpan)

	if r.cfg.Bench.Enabled {
		updates := make([]scaledUpdate, r.cfg.Feed.Updates)
		for i := range updates {
			side, price, amount := gen.Next()
			updates[i] = scaledUpdate{side: side, price: price, amount: amount}
		}
		return r.benchmarkScaled(updates)
	}

	start := time.Now()
	for i := 0; i < r.cfg.Feed.Updates; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		side, price, amount := gen.Next()
		if side == feed.SideBid {
			r.bids.SetQuote(price, amount)
		} else {
			r.asks.SetQuote(price, amount)
		}
	}
	r.logger.Info("Synthetic run finished",
		"updates", r.cfg.Feed.Updates,
		"elapsed", time.Since(start))
	r.report()
	return nil
}

func (r *Runner) runLive(ctx context.Context) error {
	stream := feed.NewStream(feed.StreamConfig{
		URL:                  r.cfg.Feed.URL,
		ReconnectInterval:    r.cfg.Feed.ReconnectInterval,
		MaxReconnectInterval: r.cfg.Feed.MaxReconnectInterval,
	}, r.apply, r.logger)

	go r.reportLoop(ctx)

	err := stream.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// reportLoop periodically logs both aggregated ladders.
func (r *Runner) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Report.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Runner) report() {
	r.logger.Info("Aggregated book",
		"asks", truncate(r.asks.AggregatedTuples(), r.cfg.Report.MaxLevels),
		"bids", truncate(r.bids.AggregatedTuples(), r.cfg.Report.MaxLevels),
		"askLevels", len(r.asks.RawLevels()),
		"bidLevels", len(r.bids.RawLevels()))
}

func truncate(levels [][2]uint64, limit int) [][2]uint64 {
	if len(levels) <= limit {
		return levels
	}
	return levels[:limit]
}

type scaledUpdate struct {
	side   feed.BookSide
	price  uint64
	amount uint64
}

// benchmark replays the loaded feed many times over both the incremental
// book and the rebuild reference and logs the elapsed times.
func (r *Runner) benchmark(updates []feed.Update) error {
	scaled := make([]scaledUpdate, len(updates))
	for i, u := range updates {
		price, amount, err := r.scaler.ScaleUpdate(u)
		if err != nil {
			return fmt.Errorf("update at platform time %d: %w", u.PlatformTime, err)
		}
		scaled[i] = scaledUpdate{side: u.Side, price: price, amount: amount}
	}
	return r.benchmarkScaled(scaled)
}

func (r *Runner) benchmarkScaled(updates []scaledUpdate) error {
	rules, err := book.NewRules(
		r.cfg.Subscription.MinimumAmounts,
		r.cfg.Subscription.Fallback,
		r.cfg.Subscription.MaxDepth,
	)
	if err != nil {
		return err
	}

	incremental := func() (book.Aggregator, book.Aggregator) {
		return book.New[book.Ask](rules), book.New[book.Bid](rules)
	}
	rebuild := func() (book.Aggregator, book.Aggregator) {
		return book.NewRebuild[book.Ask](rules), book.NewRebuild[book.Bid](rules)
	}

	r.logger.Info("Benchmark starting",
		"updates", len(updates),
		"iterations", r.cfg.Bench.Iterations)
	for _, candidate := range []struct {
		name  string
		build func() (book.Aggregator, book.Aggregator)
	}{
		{"incremental", incremental},
		{"rebuild", rebuild},
	} {
		start := time.Now()
		for i := 0; i < r.cfg.Bench.Iterations; i++ {
			asks, bids := candidate.build()
			for _, u := range updates {
				if u.side == feed.SideBid {
					bids.SetQuote(u.price, u.amount)
				} else {
					asks.SetQuote(u.price, u.amount)
				}
			}
		}
		elapsed := time.Since(start)
		r.logger.Info("Benchmark finished",
			"solution", candidate.name,
			"elapsed", elapsed,
			"perIteration", elapsed/time.Duration(r.cfg.Bench.Iterations))
	}
	return nil
}
