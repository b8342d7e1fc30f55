package choropleth

// LegendEntry pairs a bucket's representative color with its range label.
type LegendEntry struct {
	Threshold float64 `json:"threshold" doc:"Lower bound of the range" example:"200"`
	Color     Color   `json:"color" doc:"Swatch color (CSS)" example:"#E31A1C"`
	Label     string  `json:"label" doc:"Range label" example:"200–500"`
}

// LegendEntries lists one entry per grade, lowest first, the order the
// density map has always shown its legend in. The swatch is the color of a
// value just above the grade.
func LegendEntries() []LegendEntry {
	entries := make([]LegendEntry, len(Grades))
	for i, g := range Grades {
		label := FormatDensity(g)
		if i+1 < len(Grades) {
			label += "–" + FormatDensity(Grades[i+1])
		} else {
			label += "+"
		}
		entries[i] = LegendEntry{Threshold: g, Color: ColorFor(g + 1), Label: label}
	}
	return entries
}

// LegendControl is the static bucket legend. It renders once on creation.
type LegendControl struct {
	entries []LegendEntry
	html    string
}

// NewLegendControl renders the legend through the "legend-control" template.
func NewLegendControl(r Renderer) *LegendControl {
	entries := LegendEntries()
	html, err := r.Render("legend-control", entries)
	if err != nil {
		html = "<!-- template error: " + err.Error() + " -->"
	}
	return &LegendControl{entries: entries, html: html}
}

// Entries returns a copy of the legend entries.
func (l *LegendControl) Entries() []LegendEntry {
	out := make([]LegendEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HTML returns the rendered legend.
func (l *LegendControl) HTML() string {
	return l.html
}
