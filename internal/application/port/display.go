package port

// TextStyle selects font size and colour of a text run.
type TextStyle int

const (
	StyleName TextStyle = iota
	StyleLabel
	StylePrice
	StyleTimestamp
)

// MessageKind selects the full-screen message layout.
type MessageKind int

const (
	MessageStatus MessageKind = iota
	MessageError
)

// Rect is a screen region in pixels.
type Rect struct {
	X, Y, W, H int
}

// Display is the drawing surface driven by the presenter. Coordinates are in
// pixels of the emulated screen; text is drawn with its top-left at (x, y).
type Display interface {
	TextWidth(text string, style TextStyle) int
	FillScreen()
	ClearRect(r Rect)
	DrawIcon(symbol string, x, y int)
	DrawText(text string, x, y int, style TextStyle)
	DrawCenteredText(text string, centerX, y int, style TextStyle)
	DrawArrow(up bool, x, y int)
	DrawFrame()
	ShowMessage(kind MessageKind, title, text string)
	Flush() error
}
