package display

import "pricestick/internal/application/port"

// Screen layout in pixels.
const (
	ScreenWidth  = 240
	ScreenHeight = 135
	CenterX      = ScreenWidth / 2

	IconSize    = 24
	IconTextGap = 8

	NameY        = 8
	IconY        = NameY + 4
	PriceY       = 43
	UpdateLabelY = 83
	UpdateTimeY  = 103

	FrameMargin = 4
	FrameRadius = 6

	ArrowWidth   = 12
	ArrowHeight  = 12
	ArrowSpacing = 8
	ArrowY       = PriceY + 6
)

// UpdateLabel is the static caption above the timestamp.
const UpdateLabel = "Last updated:"

var (
	priceArea = port.Rect{X: FrameMargin + 2, Y: PriceY - 5, W: ScreenWidth - FrameMargin*2 - 4, H: 25}
	timeArea  = port.Rect{X: FrameMargin + 2, Y: UpdateTimeY - 5, W: ScreenWidth - FrameMargin*2 - 4, H: 20}
)

// nameLayout centres the icon and the name as one block.
func nameLayout(nameWidth int) (iconX, textX int) {
	total := IconSize + IconTextGap + nameWidth
	iconX = (ScreenWidth - total) / 2
	return iconX, iconX + IconSize + IconTextGap
}

// priceLayout centres the price text and the trend arrow as one block.
func priceLayout(priceWidth int) (priceX, arrowX int) {
	total := priceWidth + ArrowSpacing + ArrowWidth
	priceX = CenterX - total/2
	return priceX, priceX + priceWidth + ArrowSpacing
}
