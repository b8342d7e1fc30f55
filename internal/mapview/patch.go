package mapview

import "github.com/joeblew999/plat-choropleth/internal/choropleth"

// Fit asks the browser to frame a bound. Seq grows with every click so the
// browser can tell a repeated request from a stale signal.
type Fit struct {
	Seq   uint64  `json:"seq"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Patch is the set of changes produced by one event.
type Patch struct {
	Styles      map[string]choropleth.VisualStyle
	Front       string
	Fit         *Fit
	Info        string
	InfoChanged bool

	// Applied is false when the event was ignored or held.
	Applied bool
	// Held is set when the event waits for an earlier sequence number.
	Held bool
}

// Empty reports whether the patch changes nothing in the browser.
func (p Patch) Empty() bool {
	return len(p.Styles) == 0 && p.Front == "" && p.Fit == nil && !p.InfoChanged
}

// Signals returns the Datastar signal payload for the patch. The info box
// HTML travels separately as an element patch.
func (p Patch) Signals() map[string]any {
	signals := map[string]any{}
	if len(p.Styles) > 0 {
		signals["styles"] = p.Styles
	}
	if p.Front != "" {
		signals["front"] = p.Front
	}
	if p.Fit != nil {
		signals["fit"] = p.Fit
	}
	return signals
}
