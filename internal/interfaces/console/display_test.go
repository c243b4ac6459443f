package console

import (
	"bytes"
	"strings"
	"testing"

	"pricestick/internal/application/port"
	"pricestick/internal/application/usecase/display"
	"pricestick/internal/domain"
)

func TestDisplayRendersAsset(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)
	p := display.NewPresenter(d)

	rec := domain.NewAssetRecord(domain.LookupInstrument("BTC"), "CAD", domain.GroupCrypto, "")
	rec.Apply(domain.Quote{Price: 90000, Timestamp: "t0"})
	rec.Apply(domain.Quote{Price: 91234.5, Timestamp: "2026-10-14T15:00:00.000Z"})
	if err := p.Render(rec); err != nil {
		t.Fatalf("Render: %v", err)
	}

	grid := d.String()
	for _, want := range []string{"Bitcoin", "₿", "91,234.50", "▲", "Last updated:", "2026-10-14T15:00:00.000Z"} {
		if !strings.Contains(grid, want) {
			t.Errorf("grid missing %q:\n%s", want, grid)
		}
	}
	if !strings.Contains(buf.String(), "╭") {
		t.Errorf("frame not drawn")
	}

	// nothing changed, nothing written
	buf.Reset()
	_ = p.Render(rec)
	if buf.Len() != 0 {
		t.Errorf("unchanged render wrote %d bytes", buf.Len())
	}
}

func TestDisplayMessage(t *testing.T) {
	d := New(&bytes.Buffer{})
	d.ShowMessage(port.MessageError, "ERROR", "Update failed")
	grid := d.String()
	if !strings.Contains(grid, "ERROR") || !strings.Contains(grid, "Update failed") {
		t.Errorf("grid:\n%s", grid)
	}
}

func TestClearRect(t *testing.T) {
	d := New(&bytes.Buffer{})
	d.DrawText("1,000.00", 60, 43, port.StylePrice)
	d.ClearRect(port.Rect{X: 6, Y: 38, W: 228, H: 25})
	if strings.Contains(d.String(), "1,000.00") {
		t.Errorf("price region not cleared")
	}
}
