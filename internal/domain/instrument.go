package domain

import "strings"

// Group selects the upstream API and the market-hours logic of an asset.
type Group int

const (
	GroupCrypto Group = iota
	GroupEquity
)

func (g Group) String() string {
	switch g {
	case GroupCrypto:
		return "crypto"
	case GroupEquity:
		return "equity"
	default:
		return "unknown"
	}
}

// FallbackIcon is used for symbols missing from the catalog.
const FallbackIcon = "mdi:cash"

// Instrument is the static description of a tracked symbol.
type Instrument struct {
	Symbol    string
	Name      string
	Icon      string // Home Assistant mdi icon
	Glyph     string // terminal icon
	NameWidth int    // approximate rendered width of Name in pixels
}

var catalog = map[string]Instrument{
	"BTC":  {Symbol: "BTC", Name: "Bitcoin", Icon: "mdi:bitcoin", Glyph: "₿", NameWidth: 90},
	"ETH":  {Symbol: "ETH", Name: "Ethereum", Icon: "mdi:ethereum", Glyph: "Ξ", NameWidth: 102},
	"XRP":  {Symbol: "XRP", Name: "XRP", Icon: "mdi:alpha-x-circle", Glyph: "✕", NameWidth: 42},
	"MSFT": {Symbol: "MSFT", Name: "Microsoft", Icon: "mdi:microsoft", Glyph: "⊞", NameWidth: 120},
}

// LookupInstrument resolves symbol against the catalog. Unknown symbols get
// the fallback icon and a width estimated from the name length.
func LookupInstrument(symbol string) Instrument {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if in, ok := catalog[sym]; ok {
		return in
	}
	return Instrument{
		Symbol:    sym,
		Name:      sym,
		Icon:      FallbackIcon,
		Glyph:     "$",
		NameWidth: 14 * len(sym),
	}
}
