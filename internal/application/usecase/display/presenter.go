package display

import (
	"pricestick/internal/application/port"
	"pricestick/internal/domain"

	"github.com/rs/zerolog/log"
)

// Plan is the set of screen regions a render must repaint. The frame is
// repainted on every render regardless.
type Plan struct {
	Full      bool
	Price     bool
	Timestamp bool

	PriceText string
	TimeText  string
}

// Empty reports whether nothing but the frame needs a repaint.
func (p Plan) Empty() bool {
	return !p.Full && !p.Price && !p.Timestamp
}

type snapshot struct {
	symbol string
	price  string
	time   string
	valid  bool
}

// Presenter draws one asset at a time and repaints only what changed since
// the previous render.
type Presenter struct {
	out  port.Display
	last snapshot
}

func NewPresenter(out port.Display) *Presenter {
	return &Presenter{out: out}
}

// Plan diffs rec against the last rendered snapshot without drawing.
func (p *Presenter) Plan(rec domain.AssetRecord) Plan {
	pl := Plan{
		PriceText: FormatPrice(rec.Price),
		TimeText:  rec.LastUpdated,
	}
	pl.Full = !p.last.valid || p.last.symbol != rec.Symbol
	pl.Price = pl.Full || p.last.price != pl.PriceText
	pl.Timestamp = pl.Full || p.last.time != pl.TimeText
	return pl
}

// Render draws rec and commits the snapshot.
func (p *Presenter) Render(rec domain.AssetRecord) error {
	pl := p.Plan(rec)

	if pl.Full {
		p.out.FillScreen()
		iconX, textX := nameLayout(rec.NameWidth)
		p.out.DrawIcon(rec.Symbol, iconX, IconY)
		p.out.DrawText(rec.DisplayName, textX, NameY, port.StyleName)
		p.out.DrawCenteredText(UpdateLabel, CenterX, UpdateLabelY, port.StyleLabel)
		p.out.DrawFrame()
	}
	if pl.Price {
		p.out.ClearRect(priceArea)
		w := p.out.TextWidth(pl.PriceText, port.StylePrice)
		priceX, arrowX := priceLayout(w)
		p.out.DrawText(pl.PriceText, priceX, PriceY, port.StylePrice)
		if !rec.IsFirstUpdate {
			p.out.DrawArrow(rec.PriceIncreased, arrowX, ArrowY)
		}
	}
	if pl.Timestamp {
		p.out.ClearRect(timeArea)
		p.out.DrawCenteredText(pl.TimeText, CenterX, UpdateTimeY, port.StyleTimestamp)
	}
	p.out.DrawFrame()

	p.last = snapshot{symbol: rec.Symbol, price: pl.PriceText, time: pl.TimeText, valid: true}

	if pl.Full || pl.Price {
		log.Info().Str("symbol", rec.Symbol).Str("currency", rec.Currency).
			Str("price", pl.PriceText).Str("updated", rec.LastUpdated).Msg("display")
	}
	return p.out.Flush()
}

// Invalidate forces the next Render to repaint the whole screen.
func (p *Presenter) Invalidate() {
	p.last = snapshot{}
}

// ShowStatus replaces the screen with a status message.
func (p *Presenter) ShowStatus(text string) error {
	return p.message(port.MessageStatus, "WiFi", text)
}

// ShowError replaces the screen with an error message.
func (p *Presenter) ShowError(text string) error {
	log.Error().Str("message", text).Msg("display error")
	return p.message(port.MessageError, "ERROR", text)
}

func (p *Presenter) message(kind port.MessageKind, title, text string) error {
	p.out.ShowMessage(kind, title, text)
	p.Invalidate()
	return p.out.Flush()
}
