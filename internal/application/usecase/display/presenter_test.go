package display

import (
	"fmt"
	"strings"
	"testing"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
)

// recorder is a port.Display that logs each call as one line.
type recorder struct {
	ops     []string
	flushes int
}

func (r *recorder) TextWidth(text string, style port.TextStyle) int { return 12 * len(text) }
func (r *recorder) FillScreen()                                     { r.ops = append(r.ops, "fill") }
func (r *recorder) ClearRect(rc port.Rect) {
	r.ops = append(r.ops, fmt.Sprintf("clear %d,%d,%d,%d", rc.X, rc.Y, rc.W, rc.H))
}
func (r *recorder) DrawIcon(symbol string, x, y int) {
	r.ops = append(r.ops, fmt.Sprintf("icon %s %d,%d", symbol, x, y))
}
func (r *recorder) DrawText(text string, x, y int, style port.TextStyle) {
	r.ops = append(r.ops, fmt.Sprintf("text %q %d,%d", text, x, y))
}
func (r *recorder) DrawCenteredText(text string, cx, y int, style port.TextStyle) {
	r.ops = append(r.ops, fmt.Sprintf("ctext %q %d,%d", text, cx, y))
}
func (r *recorder) DrawArrow(up bool, x, y int) {
	r.ops = append(r.ops, fmt.Sprintf("arrow %v %d,%d", up, x, y))
}
func (r *recorder) DrawFrame() { r.ops = append(r.ops, "frame") }
func (r *recorder) ShowMessage(kind port.MessageKind, title, text string) {
	r.ops = append(r.ops, fmt.Sprintf("msg %s %s", title, text))
}
func (r *recorder) Flush() error { r.flushes++; return nil }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func btc(price float64, ts string) domain.AssetRecord {
	rec := domain.NewAssetRecord(domain.LookupInstrument("BTC"), "CAD", domain.GroupCrypto, "")
	rec.Apply(domain.Quote{Price: price, Timestamp: ts})
	return rec
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567.8, "1,234,567.80"},
		{999.995, "1,000.00"},
		{0.5, "0.50"},
		{0, "0.00"},
		{100, "100.00"},
		{123456.789, "123,456.79"},
		{-1234.5, "-1,234.50"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanDiff(t *testing.T) {
	p := NewPresenter(&recorder{})
	rec := btc(100, "t1")

	if pl := p.Plan(rec); !pl.Full || !pl.Price || !pl.Timestamp {
		t.Fatalf("first plan should be full: %+v", pl)
	}
	_ = p.Render(rec)

	if pl := p.Plan(rec); !pl.Empty() {
		t.Errorf("unchanged record should repaint nothing: %+v", pl)
	}

	rec.Apply(domain.Quote{Price: 101, Timestamp: "t1"})
	if pl := p.Plan(rec); pl.Full || !pl.Price || pl.Timestamp {
		t.Errorf("price change plan = %+v", pl)
	}

	rec.Apply(domain.Quote{Price: 100, Timestamp: "t2"})
	_ = p.Render(rec)
	rec.LastUpdated = "t3"
	if pl := p.Plan(rec); pl.Full || pl.Price || !pl.Timestamp {
		t.Errorf("timestamp change plan = %+v", pl)
	}

	eth := domain.NewAssetRecord(domain.LookupInstrument("ETH"), "CAD", domain.GroupCrypto, "")
	if pl := p.Plan(eth); !pl.Full {
		t.Errorf("symbol switch should be full: %+v", pl)
	}
}

func TestRenderFull(t *testing.T) {
	r := &recorder{}
	p := NewPresenter(r)
	rec := domain.NewAssetRecord(domain.LookupInstrument("BTC"), "CAD", domain.GroupCrypto, "")
	rec.Apply(domain.Quote{Price: 90000, Timestamp: "t"})

	if err := p.Render(rec); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// icon 24 + gap 8 + name 90 = 122, (240-122)/2 = 59
	want := []string{
		"fill",
		"icon BTC 59,12",
		`text "Bitcoin" 91,8`,
		`ctext "Last updated:" 120,83`,
		"frame",
		"clear 6,38,228,25",
		// "90,000.00" is 9 chars, 108px; block 108+8+12 = 128, 120-64 = 56
		`text "90,000.00" 56,43`,
		"arrow false 172,49",
		"clear 6,98,228,20",
		`ctext "t" 120,103`,
		"frame",
	}
	if strings.Join(r.ops, "\n") != strings.Join(want, "\n") {
		t.Errorf("ops:\n%s\nwant:\n%s", strings.Join(r.ops, "\n"), strings.Join(want, "\n"))
	}
	if r.flushes != 1 {
		t.Errorf("flushes = %d", r.flushes)
	}
}

func TestRenderNoArrowOnFirstUpdate(t *testing.T) {
	r := &recorder{}
	p := NewPresenter(r)
	rec := domain.NewAssetRecord(domain.LookupInstrument("MSFT"), "USD", domain.GroupEquity, domain.MarketClosed)

	_ = p.Render(rec)
	if n := r.count("arrow"); n != 0 {
		t.Errorf("arrow drawn before first update")
	}
}

func TestRenderUnchangedDrawsFrameOnly(t *testing.T) {
	r := &recorder{}
	p := NewPresenter(r)
	rec := btc(50, "t")
	_ = p.Render(rec)

	r.ops = nil
	_ = p.Render(rec)
	if len(r.ops) != 1 || r.ops[0] != "frame" {
		t.Errorf("ops = %v, want only frame", r.ops)
	}
}

func TestInvalidateAfterMessage(t *testing.T) {
	r := &recorder{}
	p := NewPresenter(r)
	rec := btc(50, "t")
	_ = p.Render(rec)

	_ = p.ShowError("Update failed")
	r.ops = nil
	_ = p.Render(rec)
	if r.count("fill") != 1 {
		t.Errorf("render after error screen should be full, ops = %v", r.ops)
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	p := NewPresenter(Fold(a, b))
	_ = p.Render(btc(1, "t"))
	if len(a.ops) == 0 || strings.Join(a.ops, "|") != strings.Join(b.ops, "|") {
		t.Errorf("outputs diverged:\n%v\n%v", a.ops, b.ops)
	}
	if a.flushes != 1 || b.flushes != 1 {
		t.Errorf("flushes = %d/%d", a.flushes, b.flushes)
	}
}
