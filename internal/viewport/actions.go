package viewport

import "spacezoom-desktop/internal/geometry"

// Action is a message dispatched into the viewport reducer
type Action interface {
	isAction()
}

type (
	ZoomInAction            struct{}
	ZoomOutAction           struct{}
	ResetAction             struct{}
	ToggleGridAction        struct{}
	ClearCursorAction       struct{}
	SetZoomAction           struct{ Zoom float64 }
	SetPanAction            struct{ Pan geometry.Point }
	SetModeAction           struct{ Mode Mode }
	SetSwipePercentAction   struct{ Percent float64 }
	SetOpacityBlendAction   struct{ Percent float64 }
	SetSpyglassRadiusAction struct{ Radius float64 }
	MoveCursorAction        struct{ Cursor geometry.Point }
)

func (ZoomInAction) isAction()            {}
func (ZoomOutAction) isAction()           {}
func (ResetAction) isAction()             {}
func (ToggleGridAction) isAction()        {}
func (ClearCursorAction) isAction()       {}
func (SetZoomAction) isAction()           {}
func (SetPanAction) isAction()            {}
func (SetModeAction) isAction()           {}
func (SetSwipePercentAction) isAction()   {}
func (SetOpacityBlendAction) isAction()   {}
func (SetSpyglassRadiusAction) isAction() {}
func (MoveCursorAction) isAction()        {}

// Dispatch applies an action and reports whether the state changed
func (v *Viewport) Dispatch(a Action) bool {
	switch a := a.(type) {
	case ZoomInAction:
		return v.ZoomIn()
	case ZoomOutAction:
		return v.ZoomOut()
	case ResetAction:
		return v.Reset()
	case ToggleGridAction:
		return v.ToggleGrid()
	case ClearCursorAction:
		return v.ClearCursor()
	case SetZoomAction:
		return v.SetZoom(a.Zoom)
	case SetPanAction:
		return v.SetPan(a.Pan)
	case SetModeAction:
		return v.SetMode(a.Mode)
	case SetSwipePercentAction:
		return v.SetSwipePercent(a.Percent)
	case SetOpacityBlendAction:
		return v.SetOpacityBlend(a.Percent)
	case SetSpyglassRadiusAction:
		return v.SetSpyglassRadius(a.Radius)
	case MoveCursorAction:
		return v.MoveCursor(a.Cursor)
	}
	return false
}

// DispatchAll applies actions in order and reports whether any changed the state
func (v *Viewport) DispatchAll(actions []Action) bool {
	changed := false
	for _, a := range actions {
		if v.Dispatch(a) {
			changed = true
		}
	}
	return changed
}
