package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockDepthServer serves one websocket connection per request and hands it
// to handler.
func mockDepthServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func TestStreamDispatchesDepthEvents(t *testing.T) {
	payload := `{"E":1700000000123,` +
		`"bids":[["16850.00","1.5"],["16849.50","0"]],` +
		`"asks":[["16851.00","0.8"]]}`

	server := mockDepthServer(t, func(conn *websocket.Conn) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			return
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []Update
	stream := NewStream(StreamConfig{
		URL: "ws" + strings.TrimPrefix(server.URL, "http"),
	}, func(u Update) error {
		got = append(got, u)
		if len(got) == 3 {
			cancel()
		}
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := stream.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d updates, want 3", len(got))
	}
	if got[0].Side != SideBid || got[0].Price != 16850.00 || got[0].Amount != 1.5 {
		t.Errorf("first update = %+v", got[0])
	}
	if got[1].Side != SideBid || got[1].Amount != 0 {
		t.Errorf("second update = %+v (zero amounts must pass through as removals)", got[1])
	}
	if got[2].Side != SideAsk || got[2].Price != 16851.00 {
		t.Errorf("third update = %+v", got[2])
	}
	if got[0].PlatformTime != 1700000000123 {
		t.Errorf("platform time = %d", got[0].PlatformTime)
	}
}

func TestStreamHandlerErrorStopsConnection(t *testing.T) {
	payload := `{"E":1,"bids":[["1","1"]],"asks":[]}`

	connects := make(chan struct{}, 8)
	server := mockDepthServer(t, func(conn *websocket.Conn) {
		connects <- struct{}{}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(payload))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	calls := 0
	stream := NewStream(StreamConfig{
		URL:               "ws" + strings.TrimPrefix(server.URL, "http"),
		ReconnectInterval: 10 * time.Millisecond,
	}, func(Update) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("handler rejected update")
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := stream.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	// The failing handler tore down the first connection; the stream
	// reconnected at least once.
	if len(connects) < 2 {
		t.Fatalf("server saw %d connections, want at least 2", len(connects))
	}
}
