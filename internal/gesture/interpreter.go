package gesture

import (
	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/viewport"
)

type sessionKind int

const (
	idle sessionKind = iota
	panning
	swiping
	tracking // spyglass pointer captured
	pinching
)

func (k sessionKind) String() string {
	switch k {
	case panning:
		return "pan"
	case swiping:
		return "swipe"
	case tracking:
		return "spyglass"
	case pinching:
		return "pinch"
	}
	return "idle"
}

// session is the single gesture in progress. A new down event replaces it.
type session struct {
	kind   sessionKind
	anchor geometry.Point // pan: client point minus pan at session start
	pct    float64        // swipe: last computed divider position
	dist0  float64        // pinch: initial finger distance
	zoom0  float64        // pinch: zoom at pinch start
}

// Result is what an input event asks of the viewport
type Result struct {
	Actions []viewport.Action

	// Preview is the in-flight swipe divider position. It is only visual
	// until the gesture ends and commits SetSwipePercentAction.
	Preview *float64
}

func (r *Result) add(a viewport.Action) {
	r.Actions = append(r.Actions, a)
}

// Interpreter turns pointer, touch and keyboard streams into viewport actions
type Interpreter struct {
	cfg     viewport.Config
	mapper  *geometry.Mapper
	session session
}

// New creates an interpreter for a viewer variant
func New(cfg viewport.Config) *Interpreter {
	return &Interpreter{
		cfg:    cfg,
		mapper: geometry.NewMapper(geometry.Rect{}),
	}
}

// SetBounds records the viewport rectangle measured by the frontend
func (in *Interpreter) SetBounds(r geometry.Rect) {
	in.mapper.SetBounds(r)
}

// Mapper exposes the coordinate mapper
func (in *Interpreter) Mapper() *geometry.Mapper {
	return in.mapper
}

// Active returns the name of the gesture in progress
func (in *Interpreter) Active() string {
	return in.session.kind.String()
}

// SwipePreview returns the divider position of an active swipe drag
func (in *Interpreter) SwipePreview() (float64, bool) {
	if in.session.kind != swiping {
		return 0, false
	}
	return in.session.pct, true
}

// Cancel drops the current gesture without committing anything
func (in *Interpreter) Cancel() {
	in.session = session{}
}

// Handle interprets one event against the current viewport state
func (in *Interpreter) Handle(ev Event, st viewport.State) Result {
	switch ev.Kind {
	case PointerDown:
		return in.down(ev.Client, st)
	case PointerMove:
		return in.move(ev.Client, st)
	case PointerUp:
		return in.up(st)
	case PointerLeave:
		return in.leave(st)
	case TouchStart:
		return in.touchStart(ev.Touches, st)
	case TouchMove:
		return in.touchMove(ev.Touches, st)
	case TouchEnd:
		return in.touchEnd(ev.Touches, st)
	case KeyDown:
		return in.key(ev.Key, st)
	}
	return Result{}
}

func (in *Interpreter) compareMode(st viewport.State, m viewport.Mode) bool {
	return in.cfg.Compare && st.Mode == m
}

func (in *Interpreter) down(client geometry.Point, st viewport.State) Result {
	var r Result
	in.session = session{}

	if st.PanEnabled() {
		in.session = session{kind: panning, anchor: client.Sub(st.Pan)}
	}
	switch {
	case in.compareMode(st, viewport.Swipe) && !st.PanEnabled():
		pct := in.mapper.PercentX(client.X)
		in.session = session{kind: swiping, pct: pct}
		r.Preview = &pct
	case in.compareMode(st, viewport.Spyglass):
		r.add(in.cursorAction(client))
		if in.session.kind == idle {
			in.session = session{kind: tracking}
		}
	}
	return r
}

func (in *Interpreter) move(client geometry.Point, st viewport.State) Result {
	var r Result
	switch in.session.kind {
	case panning:
		r.add(viewport.SetPanAction{Pan: client.Sub(in.session.anchor)})
	case swiping:
		pct := in.mapper.PercentX(client.X)
		in.session.pct = pct
		r.Preview = &pct
	}
	if in.compareMode(st, viewport.Spyglass) {
		r.add(in.cursorAction(client))
	}
	return r
}

func (in *Interpreter) up(st viewport.State) Result {
	var r Result
	if in.session.kind == swiping {
		r.add(viewport.SetSwipePercentAction{Percent: in.session.pct})
	}
	in.session = session{}
	return r
}

func (in *Interpreter) leave(st viewport.State) Result {
	r := in.up(st)
	if in.compareMode(st, viewport.Spyglass) {
		r.add(viewport.ClearCursorAction{})
	}
	return r
}

func (in *Interpreter) cursorAction(client geometry.Point) viewport.Action {
	local, ok := in.mapper.Local(client)
	if !ok {
		return viewport.ClearCursorAction{}
	}
	return viewport.MoveCursorAction{Cursor: local}
}

func (in *Interpreter) touchStart(touches []geometry.Point, st viewport.State) Result {
	switch {
	case len(touches) >= 2 && in.cfg.Pinch:
		in.session = session{
			kind:  pinching,
			dist0: geometry.Distance(touches[0], touches[1]),
			zoom0: st.Zoom,
		}
		return Result{}
	case len(touches) == 1:
		return in.down(touches[0], st)
	}
	return Result{}
}

func (in *Interpreter) touchMove(touches []geometry.Point, st viewport.State) Result {
	if in.session.kind == pinching {
		if len(touches) < 2 {
			return Result{}
		}
		d := geometry.Distance(touches[0], touches[1])
		if in.session.dist0 <= 0 {
			// fingers started on the same spot; anchor on the first real spread
			in.session.dist0 = d
			in.session.zoom0 = st.Zoom
			return Result{}
		}
		z := PinchZoom(in.session.zoom0, in.session.dist0, d, st.Config().ZoomCap)
		return Result{Actions: []viewport.Action{viewport.SetZoomAction{Zoom: z}}}
	}
	if len(touches) == 1 {
		return in.move(touches[0], st)
	}
	return Result{}
}

func (in *Interpreter) touchEnd(remaining []geometry.Point, st viewport.State) Result {
	if in.session.kind == pinching {
		if len(remaining) >= 2 {
			return Result{}
		}
		in.session = session{}
		if len(remaining) == 1 && st.PanEnabled() {
			in.session = session{kind: panning, anchor: remaining[0].Sub(st.Pan)}
		}
		return Result{}
	}
	if len(remaining) == 0 {
		return in.up(st)
	}
	return Result{}
}

func (in *Interpreter) key(key string, st viewport.State) Result {
	if !in.compareMode(st, viewport.Swipe) {
		return Result{}
	}
	var pct float64
	switch key {
	case KeyArrowLeft:
		pct = st.SwipePercent - KeyboardStep
	case KeyArrowRight:
		pct = st.SwipePercent + KeyboardStep
	case KeyHome:
		pct = 0
	case KeyEnd:
		pct = 100
	default:
		return Result{}
	}
	pct = geometry.Clamp(pct, 0, 100)
	return Result{Actions: []viewport.Action{viewport.SetSwipePercentAction{Percent: pct}}}
}

// PinchZoom scales the zoom at pinch start by the change in finger distance
func PinchZoom(zoom0, dist0, dist, zoomCap float64) float64 {
	scale := 1.0
	if dist0 > 0 {
		scale = dist / dist0
	}
	return geometry.Clamp(zoom0*scale, viewport.MinZoom, zoomCap)
}
