package choropleth

import (
	"strconv"
	"sync"
)

// Renderer renders a named HTML template.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// InfoPlaceholder is shown while nothing is hovered.
const InfoPlaceholder = "Hover over a state"

type infoView struct {
	Selection *selectionView
}

type selectionView struct {
	Name    string
	Density string
}

// InfoControl is the overlay showing the hovered feature. It is mounted once
// per map and renders through the "info-control" template.
type InfoControl struct {
	renderer Renderer

	mu       sync.Mutex
	html     string
	mounted  bool
	onRender func(html string)
}

// NewInfoControl returns an unmounted info control.
func NewInfoControl(r Renderer) *InfoControl {
	return &InfoControl{renderer: r}
}

// Mount renders the placeholder and starts forwarding every render to
// onRender. A second Mount is ignored.
func (c *InfoControl) Mount(onRender func(html string)) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.onRender = onRender
	c.mu.Unlock()

	c.Update(nil)
}

// Unmount stops forwarding renders. Updates after Unmount are dropped.
func (c *InfoControl) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.onRender = nil
}

// Mounted reports whether the control is attached to a map.
func (c *InfoControl) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Update shows sel, or the placeholder when sel is nil.
func (c *InfoControl) Update(sel *Selection) {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.html = c.render(sel)
	html, onRender := c.html, c.onRender
	c.mu.Unlock()

	if onRender != nil {
		onRender(html)
	}
}

// HTML returns the last rendered content.
func (c *InfoControl) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

func (c *InfoControl) render(sel *Selection) string {
	view := infoView{}
	if sel != nil {
		view.Selection = &selectionView{
			Name:    sel.Name,
			Density: FormatDensity(sel.Density),
		}
	}
	html, err := c.renderer.Render("info-control", view)
	if err != nil {
		return "<!-- template error: " + err.Error() + " -->"
	}
	return html
}

// FormatDensity prints a density with the fewest digits that round-trip.
func FormatDensity(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}
