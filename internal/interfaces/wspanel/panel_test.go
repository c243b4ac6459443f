package wspanel

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pricestick/internal/application/port"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := strings.Replace(srv.URL, "http://", "ws://", 1)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return f
}

func waitClients(t *testing.T, p *Panel, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", p.Clients(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPanelBroadcastAndReplay(t *testing.T) {
	p := New()
	srv := httptest.NewServer(p)
	defer srv.Close()

	first := dial(t, srv)
	waitClients(t, p, 1)

	p.FillScreen()
	p.DrawText("Bitcoin", 91, 8, port.StyleName)
	p.DrawFrame()
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	f := readFrame(t, first)
	if len(f.Ops) != 3 || f.Ops[0].Op != "fill" || f.Ops[1].Text != "Bitcoin" || f.Ops[1].Style != "name" {
		t.Errorf("frame = %+v", f)
	}

	// border-only flushes are not sent
	p.DrawFrame()
	_ = p.Flush()

	second := dial(t, srv)
	replay := readFrame(t, second)
	if len(replay.Ops) != 3 || replay.Ops[0].Op != "fill" {
		t.Errorf("replay = %+v", replay)
	}
}

func TestPanelMessageResetsReplay(t *testing.T) {
	p := New()
	p.FillScreen()
	p.DrawText("x", 0, 0, port.StylePrice)
	_ = p.Flush()
	p.ShowMessage(port.MessageError, "ERROR", "Update failed")
	_ = p.Flush()

	if len(p.replay) != 1 || p.replay[0].Kind != "error" {
		t.Errorf("replay = %+v", p.replay)
	}
}

func TestPanelTextWidth(t *testing.T) {
	p := New()
	if got := p.TextWidth("1,000.00", port.StylePrice); got != 96 {
		t.Errorf("price width = %d", got)
	}
	if got := p.TextWidth("Just now", port.StyleTimestamp); got != 48 {
		t.Errorf("timestamp width = %d", got)
	}
}
