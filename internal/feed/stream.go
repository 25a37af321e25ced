package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// StreamConfig configures the live depth ingester.
type StreamConfig struct {
	URL                  string
	ReconnectInterval    time.Duration
	MaxReconnectInterval time.Duration
}

// depthEvent matches a partial depth payload with absolute quantities: each
// entry is ["price","quantity"], quantity zero meaning the level is gone.
type depthEvent struct {
	EventTime uint64     `json:"E"`
	Bids      [][]string `json:"bids"`
	Asks      [][]string `json:"asks"`
}

// Stream consumes a venue's depth websocket and hands each price level to
// the handler as an Update. It reconnects with capped exponential backoff
// until the context is cancelled.
type Stream struct {
	cfg     StreamConfig
	handler func(Update) error
	logger  *slog.Logger
}

// NewStream creates a live depth ingester.
func NewStream(cfg StreamConfig, handler func(Update) error, logger *slog.Logger) *Stream {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = time.Second
	}
	if cfg.MaxReconnectInterval <= 0 {
		cfg.MaxReconnectInterval = 30 * time.Second
	}
	return &Stream{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With("component", "Stream"),
	}
}

// Run blocks consuming the stream until ctx is cancelled.
func (s *Stream) Run(ctx context.Context) error {
	delay := s.cfg.ReconnectInterval

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := s.connectAndConsume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.logger.Error("Stream error, reconnecting",
				"error", err,
				"delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.cfg.MaxReconnectInterval {
				delay = s.cfg.MaxReconnectInterval
			}
		} else {
			delay = s.cfg.ReconnectInterval
		}
	}
}

func (s *Stream) connectAndConsume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}
	defer conn.Close()

	s.logger.Info("Connected to depth stream", "url", s.cfg.URL)

	// Unblock the read loop when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	var event depthEvent
	for {
		if err := conn.ReadJSON(&event); err != nil {
			return fmt.Errorf("read depth event: %w", err)
		}
		if err := s.dispatch(SideBid, event.EventTime, event.Bids); err != nil {
			return err
		}
		if err := s.dispatch(SideAsk, event.EventTime, event.Asks); err != nil {
			return err
		}
	}
}

func (s *Stream) dispatch(side BookSide, eventTime uint64, levels [][]string) error {
	for _, level := range levels {
		if len(level) < 2 {
			continue
		}
		price, err := strconv.ParseFloat(level[0], 64)
		if err != nil {
			return fmt.Errorf("bad price %q: %w", level[0], err)
		}
		amount, err := strconv.ParseFloat(level[1], 64)
		if err != nil {
			return fmt.Errorf("bad amount %q: %w", level[1], err)
		}
		if err := s.handler(Update{
			PlatformTime: eventTime,
			ExchangeTime: eventTime,
			Side:         side,
			Price:        price,
			Amount:       amount,
		}); err != nil {
			return err
		}
	}
	return nil
}
