package choropleth

// State is the interaction state of a single feature.
type State int

const (
	Idle State = iota
	Highlighted
)

func (s State) String() string {
	switch s {
	case Highlighted:
		return "highlighted"
	default:
		return "idle"
	}
}

// VisualStyle is the paint applied to one feature. Field names follow the
// path options of the browser mapping library so a style can be sent as-is.
type VisualStyle struct {
	FillColor   Color   `json:"fillColor"`
	Color       Color   `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	DashArray   string  `json:"dashArray"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Style computes the paint for a feature in the given state.
func Style(f Feature, state State) VisualStyle {
	s := VisualStyle{
		FillColor:   ColorFor(f.Density),
		Color:       "white",
		Weight:      2,
		Opacity:     1,
		DashArray:   "3",
		FillOpacity: 0.7,
	}
	if state == Highlighted {
		s.Weight = 5
		s.Color = "#666"
		s.DashArray = ""
		s.FillOpacity = 0.7
	}
	return s
}

// StyleFor returns the base (idle) style of a feature.
func StyleFor(f Feature) VisualStyle {
	return Style(f, Idle)
}
