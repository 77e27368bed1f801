package monitor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/input"
	"github.com/coreman2200/funtimes-strips/internal/player"
	"github.com/coreman2200/funtimes-strips/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestMetrics(t *testing.T) {
	s := New(zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	s.Displayed(player.Snapshot{Index: 0, Brightness: 200, Tick: time.Millisecond})
	s.Displayed(player.Snapshot{Index: 1, Brightness: 180, Tick: time.Millisecond})
	s.Applied(input.Command{Kind: input.Dimmer})
	s.Applied(input.Command{Kind: input.Dimmer})
	s.DisplayFailed(assert.AnError)

	body := get(t, ts.URL+"/metrics")
	assert.Contains(t, body, "strips_frames_total 2")
	assert.Contains(t, body, "strips_display_errors_total 1")
	assert.Contains(t, body, `strips_commands_total{command="dimmer"} 2`)
	assert.Contains(t, body, "strips_brightness 180")
	assert.Contains(t, body, "strips_tick_seconds_count 2")
}

func TestFramesOverWebsocket(t *testing.T) {
	s := New(zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Clients() == 1 }, time.Second, 10*time.Millisecond)

	f := model.Frame{model.RGB(255, 0, 0), model.RGB(0, 0, 0)}
	s.Displayed(player.Snapshot{Index: 7, Frame: f, Brightness: 255, Status: "Pattern: Chase"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		FrameID uint64 `json:"frame_id"`
		Status  string `json:"status"`
		RGB     string `json:"rgb"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, uint64(7), msg.FrameID)
	assert.Equal(t, "Pattern: Chase", msg.Status)
	rgb, err := base64.StdEncoding.DecodeString(msg.RGB)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 0}, rgb)

	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(get(t, ts.URL+"/health")), &health))
	assert.Equal(t, float64(7), health["frame_id"])
	assert.Equal(t, float64(1), health["clients"])
}

func TestDisplayedNeverBlocks(t *testing.T) {
	s := New(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Displayed(player.Snapshot{Index: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Displayed blocked without a reader")
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx, "127.0.0.1:0"))

	sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer scancel()
	assert.NoError(t, s.Shutdown(sctx))
	select {
	case <-s.stopped:
	default:
		t.Fatal("forwarder still running after Shutdown")
	}
	require.NoError(t, ctx.Err(), "run context is left alone")

	assert.Error(t, New(zerolog.Nop()).Start(ctx, "256.0.0.1:bad"))
}
