// Package mapview composes one interactive density map: base map settings,
// tile backdrop, the geometry layer with its handlers, and the info and
// legend controls. A MapView serializes its events so each one completes
// before the next starts.
package mapview

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-choropleth/internal/choropleth"
	"github.com/joeblew999/plat-choropleth/internal/config"
)

// EventKind names a pointer event on a feature.
type EventKind string

const (
	Enter EventKind = "enter"
	Leave EventKind = "leave"
	Click EventKind = "click"
)

// Event is one pointer event against a feature. Seq is the browser's event
// counter starting at 1; events with a Seq are applied strictly in Seq order.
// Zero means unsequenced and is applied on arrival.
type Event struct {
	Kind      EventKind
	FeatureID string
	Seq       uint64
}

// maxHeld bounds the events parked behind a missing sequence number. Past
// it the gap is skipped.
const maxHeld = 32

// MapView is one viewer's map. All methods are safe for concurrent use.
type MapView struct {
	mu sync.Mutex

	config   config.Map
	layer    *choropleth.GeometryLayer
	handlers *choropleth.Handlers
	info     *choropleth.InfoControl
	legend   *choropleth.LegendControl
	out      *outbox
	closed   bool

	nextSeq uint64
	held    map[uint64]Event
}

// New paints every feature with its base style and mounts both controls.
func New(features []choropleth.Feature, cfg config.Map, r choropleth.Renderer) *MapView {
	out := newOutbox()
	v := &MapView{
		config:  cfg,
		layer:   choropleth.NewGeometryLayer(features, out),
		info:    choropleth.NewInfoControl(r),
		legend:  choropleth.NewLegendControl(r),
		out:     out,
		nextSeq: 1,
		held:    make(map[uint64]Event),
	}
	v.handlers = choropleth.NewHandlers(v.layer, v.info.Update, out)
	v.info.Mount(out.setInfo)

	// The initial paint is delivered by Snapshot.
	out.drain()
	return v
}

// Config returns the base map settings.
func (v *MapView) Config() config.Map {
	return v.config
}

// Legend returns the legend control.
func (v *MapView) Legend() *choropleth.LegendControl {
	return v.legend
}

// Dispatch runs the handler for ev and returns what changed. Events for
// unknown features, unknown kinds, or a closed view produce an empty patch.
//
// A sequenced event that arrives ahead of a missing one is held and its
// patch is marked Held; it runs, and its changes are returned, once the
// missing event arrives. A sequenced event older than the last applied one
// is dropped.
func (v *MapView) Dispatch(ev Event) Patch {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return Patch{}
	}
	if ev.Seq == 0 {
		return v.flush(v.apply(ev))
	}

	switch {
	case ev.Seq < v.nextSeq:
		return Patch{}
	case ev.Seq > v.nextSeq:
		v.held[ev.Seq] = ev
		if len(v.held) <= maxHeld {
			return Patch{Held: true}
		}
		v.nextSeq = v.lowestHeld()
	default:
		v.held[ev.Seq] = ev
	}

	applied := false
	for {
		next, ok := v.held[v.nextSeq]
		if !ok {
			break
		}
		delete(v.held, v.nextSeq)
		v.nextSeq++
		if v.apply(next) {
			applied = true
		}
	}
	return v.flush(applied)
}

func (v *MapView) apply(ev Event) bool {
	switch ev.Kind {
	case Enter:
		return v.handlers.Enter(ev.FeatureID)
	case Leave:
		if v.handlers.Leave(ev.FeatureID) {
			v.out.resetAll = true
			return true
		}
	case Click:
		return v.handlers.Click(ev.FeatureID)
	}
	return false
}

// flush drains the outbox. After a leave the patch carries every feature's
// style, so a browser that missed an earlier patch converges again.
func (v *MapView) flush(applied bool) Patch {
	full := v.out.resetAll
	p := v.out.drain()
	if full {
		p.Styles = v.styles()
	}
	p.Applied = applied
	return p
}

func (v *MapView) styles() map[string]choropleth.VisualStyle {
	styles := make(map[string]choropleth.VisualStyle, v.layer.Len())
	for _, id := range v.layer.Order() {
		if s, ok := v.layer.StyleOf(id); ok {
			styles[id] = s
		}
	}
	return styles
}

func (v *MapView) lowestHeld() uint64 {
	var lowest uint64
	for seq := range v.held {
		if lowest == 0 || seq < lowest {
			lowest = seq
		}
	}
	return lowest
}

// Snapshot returns the complete current state: every feature's style, the
// top feature if one was raised, and the info box.
func (v *MapView) Snapshot() Patch {
	v.mu.Lock()
	defer v.mu.Unlock()

	return Patch{
		Styles:      v.styles(),
		Front:       v.out.lastFront,
		Info:        v.info.HTML(),
		InfoChanged: true,
	}
}

// StyleOf returns the style currently applied to a feature.
func (v *MapView) StyleOf(id string) (choropleth.VisualStyle, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layer.StyleOf(id)
}

// Hovered returns the feature under the pointer, if any.
func (v *MapView) Hovered() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handlers.Hovered()
}

// Close unmounts the controls. Later events are ignored.
func (v *MapView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.info.Unmount()
}

// Closed reports whether Close has been called.
func (v *MapView) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// outbox collects the effects of one dispatch. It is the Surface of the
// geometry layer, the Viewport of the handlers and the info control sink.
type outbox struct {
	pending   Patch
	lastFront string
	fitSeq    uint64
	resetAll  bool
}

func newOutbox() *outbox {
	return &outbox{}
}

func (o *outbox) ApplyStyle(id string, style choropleth.VisualStyle) {
	if o.pending.Styles == nil {
		o.pending.Styles = make(map[string]choropleth.VisualStyle)
	}
	o.pending.Styles[id] = style
}

func (o *outbox) BringToFront(id string) {
	o.pending.Front = id
	o.lastFront = id
}

func (o *outbox) FitBounds(b orb.Bound) {
	o.fitSeq++
	o.pending.Fit = &Fit{
		Seq:   o.fitSeq,
		South: b.Min.Lat(),
		West:  b.Min.Lon(),
		North: b.Max.Lat(),
		East:  b.Max.Lon(),
	}
}

func (o *outbox) setInfo(html string) {
	o.pending.Info = html
	o.pending.InfoChanged = true
}

func (o *outbox) drain() Patch {
	p := o.pending
	o.pending = Patch{}
	o.resetAll = false
	return p
}
