package choropleth

// Surface is where styles end up: the browser in production, a recorder in
// tests. Implementations must not call back into the layer.
type Surface interface {
	ApplyStyle(id string, style VisualStyle)
	BringToFront(id string)
}

type nopSurface struct{}

func (nopSurface) ApplyStyle(string, VisualStyle) {}
func (nopSurface) BringToFront(string)            {}

type renderedLayer struct {
	feature Feature
	state   State
	style   VisualStyle
}

// GeometryLayer is the registry of rendered features. It owns the current
// style and paint order of every feature and is the only thing that writes
// to the Surface.
type GeometryLayer struct {
	surface Surface
	layers  map[string]*renderedLayer
	order   []string // paint order, last is on top
}

// NewGeometryLayer registers the features in order and paints each with its
// base style.
func NewGeometryLayer(features []Feature, surface Surface) *GeometryLayer {
	if surface == nil {
		surface = nopSurface{}
	}
	g := &GeometryLayer{
		surface: surface,
		layers:  make(map[string]*renderedLayer, len(features)),
		order:   make([]string, 0, len(features)),
	}
	for _, f := range features {
		if _, dup := g.layers[f.ID]; dup {
			continue
		}
		l := &renderedLayer{feature: f, state: Idle, style: StyleFor(f)}
		g.layers[f.ID] = l
		g.order = append(g.order, f.ID)
		surface.ApplyStyle(f.ID, l.style)
	}
	return g
}

// Len returns the number of rendered features.
func (g *GeometryLayer) Len() int {
	return len(g.order)
}

// Feature returns the feature registered under id.
func (g *GeometryLayer) Feature(id string) (Feature, bool) {
	l, ok := g.layers[id]
	if !ok {
		return Feature{}, false
	}
	return l.feature, true
}

// StyleOf returns the style currently applied to id.
func (g *GeometryLayer) StyleOf(id string) (VisualStyle, bool) {
	l, ok := g.layers[id]
	if !ok {
		return VisualStyle{}, false
	}
	return l.style, true
}

// StateOf returns the interaction state of id.
func (g *GeometryLayer) StateOf(id string) (State, bool) {
	l, ok := g.layers[id]
	if !ok {
		return Idle, false
	}
	return l.state, true
}

// Order returns a copy of the paint order, bottom first.
func (g *GeometryLayer) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// SetState moves id into state and applies the matching style. The Surface
// only sees the style when it actually changes. Returns false for an
// unknown id.
func (g *GeometryLayer) SetState(id string, state State) bool {
	l, ok := g.layers[id]
	if !ok {
		return false
	}
	l.state = state
	next := Style(l.feature, state)
	if next != l.style {
		l.style = next
		g.surface.ApplyStyle(id, next)
	}
	return true
}

// ResetStyle restores the base style of id.
func (g *GeometryLayer) ResetStyle(id string) bool {
	return g.SetState(id, Idle)
}

// ResetAll restores the base style of every rendered feature.
func (g *GeometryLayer) ResetAll() {
	for _, id := range g.order {
		g.SetState(id, Idle)
	}
}

// BringToFront raises id to the top of the paint order.
func (g *GeometryLayer) BringToFront(id string) bool {
	if _, ok := g.layers[id]; !ok {
		return false
	}
	for i, other := range g.order {
		if other == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.order = append(g.order, id)
	g.surface.BringToFront(id)
	return true
}

// Remove detaches id from the layer. Later events for it are ignored.
func (g *GeometryLayer) Remove(id string) bool {
	if _, ok := g.layers[id]; !ok {
		return false
	}
	delete(g.layers, id)
	for i, other := range g.order {
		if other == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}
