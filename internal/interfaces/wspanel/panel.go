package wspanel

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pricestick/internal/application/port"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Op is one draw call sent to remote panels.
type Op struct {
	Op     string `json:"op"`
	Text   string `json:"text,omitempty"`
	Title  string `json:"title,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Style  string `json:"style,omitempty"`
	Kind   string `json:"kind,omitempty"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	W      int    `json:"w,omitempty"`
	H      int    `json:"h,omitempty"`
	Up     bool   `json:"up,omitempty"`
}

// Frame is the batch of ops between two flushes.
type Frame struct {
	Ops []Op `json:"ops"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Panel implements port.Display by broadcasting draw calls to websocket
// clients. Late joiners get the ops since the last full repaint.
type Panel struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	pending []Op
	replay  []Op
	clients map[*client]struct{}
}

func New() *Panel {
	return &Panel{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// TextWidth approximates the LCD font: size 2 for names and prices.
func (p *Panel) TextWidth(text string, style port.TextStyle) int {
	n := len([]rune(text))
	switch style {
	case port.StyleName, port.StylePrice:
		return n * 12
	default:
		return n * 6
	}
}

func (p *Panel) FillScreen() { p.push(Op{Op: "fill"}) }

func (p *Panel) ClearRect(r port.Rect) {
	p.push(Op{Op: "clear", X: r.X, Y: r.Y, W: r.W, H: r.H})
}

func (p *Panel) DrawIcon(symbol string, x, y int) {
	p.push(Op{Op: "icon", Symbol: symbol, X: x, Y: y})
}

func (p *Panel) DrawText(text string, x, y int, style port.TextStyle) {
	p.push(Op{Op: "text", Text: text, X: x, Y: y, Style: styleName(style)})
}

func (p *Panel) DrawCenteredText(text string, centerX, y int, style port.TextStyle) {
	p.push(Op{Op: "ctext", Text: text, X: centerX, Y: y, Style: styleName(style)})
}

func (p *Panel) DrawArrow(up bool, x, y int) {
	p.push(Op{Op: "arrow", Up: up, X: x, Y: y})
}

func (p *Panel) DrawFrame() { p.push(Op{Op: "frame"}) }

func (p *Panel) ShowMessage(kind port.MessageKind, title, text string) {
	k := "status"
	if kind == port.MessageError {
		k = "error"
	}
	p.push(Op{Op: "message", Kind: k, Title: title, Text: text})
}

// Flush broadcasts the pending ops as one frame. A flush that only redraws
// the frame border is not sent. Slow clients are dropped.
func (p *Panel) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := p.pending
	p.pending = nil
	if frameOnly(ops) {
		return nil
	}
	if i := lastReset(ops); i >= 0 {
		p.replay = append(p.replay[:0], ops[i:]...)
	} else {
		p.replay = append(p.replay, ops...)
	}
	b, err := json.Marshal(Frame{Ops: ops})
	if err != nil {
		return err
	}
	for c := range p.clients {
		select {
		case c.send <- b:
		default:
			log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("panel client too slow, dropping")
			p.drop(c)
		}
	}
	return nil
}

// Clients returns the number of connected panels.
func (p *Panel) Clients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// ServeHTTP upgrades the request and streams frames until the peer leaves.
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("panel upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	p.mu.Lock()
	if len(p.replay) > 0 {
		if b, err := json.Marshal(Frame{Ops: p.replay}); err == nil {
			c.send <- b
		}
	}
	p.clients[c] = struct{}{}
	p.mu.Unlock()
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("panel connected")

	go p.writeLoop(c)
	p.readLoop(c)
}

// Close disconnects every client.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		p.drop(c)
	}
}

func (p *Panel) readLoop(c *client) {
	defer func() {
		p.mu.Lock()
		p.drop(c)
		p.mu.Unlock()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (p *Panel) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop must be called with mu held.
func (p *Panel) drop(c *client) {
	if _, ok := p.clients[c]; !ok {
		return
	}
	delete(p.clients, c)
	close(c.send)
}

func (p *Panel) push(op Op) {
	p.mu.Lock()
	p.pending = append(p.pending, op)
	p.mu.Unlock()
}

func lastReset(ops []Op) int {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].Op == "fill" || ops[i].Op == "message" {
			return i
		}
	}
	return -1
}

func frameOnly(ops []Op) bool {
	for _, op := range ops {
		if op.Op != "frame" {
			return false
		}
	}
	return true
}

func styleName(s port.TextStyle) string {
	switch s {
	case port.StyleName:
		return "name"
	case port.StyleLabel:
		return "label"
	case port.StylePrice:
		return "price"
	case port.StyleTimestamp:
		return "timestamp"
	default:
		return ""
	}
}

var _ port.Display = (*Panel)(nil)
