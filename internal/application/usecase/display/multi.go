package display

import (
	"errors"

	"pricestick/internal/application/port"
)

// Multi mirrors every draw call to all outputs. Text is measured by the first.
type Multi []port.Display

// Fold returns the single display behind outs when there is only one.
func Fold(outs ...port.Display) port.Display {
	if len(outs) == 1 {
		return outs[0]
	}
	return Multi(outs)
}

func (m Multi) TextWidth(text string, style port.TextStyle) int {
	if len(m) == 0 {
		return 0
	}
	return m[0].TextWidth(text, style)
}

func (m Multi) FillScreen() {
	for _, d := range m {
		d.FillScreen()
	}
}

func (m Multi) ClearRect(r port.Rect) {
	for _, d := range m {
		d.ClearRect(r)
	}
}

func (m Multi) DrawIcon(symbol string, x, y int) {
	for _, d := range m {
		d.DrawIcon(symbol, x, y)
	}
}

func (m Multi) DrawText(text string, x, y int, style port.TextStyle) {
	for _, d := range m {
		d.DrawText(text, x, y, style)
	}
}

func (m Multi) DrawCenteredText(text string, centerX, y int, style port.TextStyle) {
	for _, d := range m {
		d.DrawCenteredText(text, centerX, y, style)
	}
}

func (m Multi) DrawArrow(up bool, x, y int) {
	for _, d := range m {
		d.DrawArrow(up, x, y)
	}
}

func (m Multi) DrawFrame() {
	for _, d := range m {
		d.DrawFrame()
	}
}

func (m Multi) ShowMessage(kind port.MessageKind, title, text string) {
	for _, d := range m {
		d.ShowMessage(kind, title, text)
	}
}

func (m Multi) Flush() error {
	var errs []error
	for _, d := range m {
		if err := d.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
