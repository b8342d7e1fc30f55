package choropleth

import "github.com/paulmach/orb"

// Selection is what the info box shows for the hovered feature.
type Selection struct {
	Name    string  `json:"name"`
	Density float64 `json:"density"`
}

// InfoFunc receives the hovered feature, or nil when nothing is hovered.
type InfoFunc func(sel *Selection)

// Viewport is the hosting map's view. FitBounds must frame exactly b.
type Viewport interface {
	FitBounds(b orb.Bound)
}

// Handlers respond to pointer events on the geometry layer. They are not
// safe for concurrent use; the caller serializes events.
type Handlers struct {
	layer    *GeometryLayer
	info     InfoFunc
	viewport Viewport

	hovered string
	hovering bool
}

// NewHandlers wires the handlers to a layer, the info box update and the
// viewport. info and viewport may be nil.
func NewHandlers(layer *GeometryLayer, info InfoFunc, viewport Viewport) *Handlers {
	if info == nil {
		info = func(*Selection) {}
	}
	return &Handlers{layer: layer, info: info, viewport: viewport}
}

// Hovered returns the feature currently under the pointer.
func (h *Handlers) Hovered() (string, bool) {
	return h.hovered, h.hovering
}

// Enter highlights id, raises it above its neighbours and shows it in the
// info box. Unknown ids are ignored; the return value reports whether
// anything happened.
func (h *Handlers) Enter(id string) bool {
	f, ok := h.layer.Feature(id)
	if !ok {
		return false
	}
	h.layer.SetState(id, Highlighted)
	h.layer.BringToFront(id)
	h.hovered, h.hovering = id, true
	h.info(&Selection{Name: f.Name, Density: f.Density})
	return true
}

// Leave restores the base style of every rendered feature and clears the
// info box.
func (h *Handlers) Leave(id string) bool {
	if _, ok := h.layer.Feature(id); !ok {
		return false
	}
	h.layer.ResetAll()
	h.hovered, h.hovering = "", false
	h.info(nil)
	return true
}

// Click asks the viewport to frame id's geometry. Highlight and info box
// are left alone.
func (h *Handlers) Click(id string) bool {
	f, ok := h.layer.Feature(id)
	if !ok || h.viewport == nil {
		return false
	}
	h.viewport.FitBounds(f.Bound())
	return true
}
