package overlaymodule

import (
	"github.com/google/uuid"

	"github.com/openreel/openreel/internal/geometry"
)

// ActionType enumerates the closed set of state transitions an overlay
// store understands. Every mutation goes through apply; apply has no
// side effects beyond the state transition, so cross-store mirroring
// lives in the bridge, never here.
type ActionType string

const (
	ActionAdd            ActionType = "add"
	ActionRemove         ActionType = "remove"
	ActionSelect         ActionType = "select"
	ActionUpdate         ActionType = "update"
	ActionDuplicate      ActionType = "duplicate"
	ActionMove           ActionType = "move"
	ActionResize         ActionType = "resize"
	ActionRotate         ActionType = "rotate"
	ActionSetOpacity     ActionType = "setOpacity"
	ActionSetTiming      ActionType = "setTiming"
	ActionSetVisibility  ActionType = "setVisibility"
	ActionSetLock        ActionType = "setLock"
	ActionBringToFront   ActionType = "bringToFront"
	ActionSendToBack     ActionType = "sendToBack"
	ActionCopy           ActionType = "copy"
	ActionPaste          ActionType = "paste"
	ActionClearClipboard ActionType = "clearClipboard"
	ActionBulkRestore    ActionType = "bulkRestore"
	ActionBulkTiming     ActionType = "bulkTiming"
)

// Action is one dispatched transition. Fields are interpreted per type;
// unused fields are ignored.
type Action struct {
	Type ActionType

	ID       string
	Overlay  *Overlay
	Update   *OverlayUpdate
	Position geometry.Position
	Size     geometry.Size
	Rotation float64
	Opacity  float64
	Timing   Timing
	Visible  bool
	Locked   bool

	// NewID carries the id for Duplicate/Paste clones so the caller
	// can link a timeline item to the same id.
	NewID string

	Overlays []Overlay         // BulkRestore
	Timings  map[string]Timing // BulkTiming
}

// overlayState is the reducer state: overlays in insertion order plus a
// single-slot clipboard.
type overlayState struct {
	overlays  []*Overlay
	clipboard *Overlay
}

// policy carries the kind-specific knobs the reducer needs
type policy struct {
	kind            OverlayKind
	frame           geometry.Frame
	margin          float64
	duplicateOffset geometry.Position
	minAxis         float64 // sticker size floor, 0 disables
	maxAxis         float64 // sticker size cap, 0 disables

	// percentUnits marks stores whose positions are percentages of the
	// frame while sizes stay in pixels; clamping then bounds the anchor
	// point alone, since mixing the units against one frame is
	// meaningless.
	percentUnits bool
}

func clampPos(p policy, pos geometry.Position, size geometry.Size) geometry.Position {
	if p.percentUnits {
		size = geometry.Size{}
	}
	return geometry.ClampPositionToBounds(pos, size, p.frame, p.margin)
}

// apply is the reducer. It mutates state deterministically and returns
// whether anything changed. Unknown ids are a no-op (changed=false).
func apply(state *overlayState, p policy, action Action) bool {
	switch action.Type {
	case ActionAdd:
		if action.Overlay == nil {
			return false
		}
		o := *action.Overlay
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		o.Kind = p.kind
		o.Timing = NewTiming(o.Timing.StartTime, o.Timing.Duration)
		o.ZIndex = maxZIndex(state.overlays) + 1
		o.IsVisible = true
		// Zero opacity on the Add payload means unset.
		if o.Opacity == 0 {
			o.Opacity = 1.0
		}
		o.Size = clampOverlaySize(o.Size, p)
		o.Position = clampPos(p, o.Position, o.Size)
		selectOnly(state.overlays, "")
		o.IsSelected = true
		state.overlays = append(state.overlays, &o)
		return true

	case ActionRemove:
		for i, o := range state.overlays {
			if o.ID == action.ID {
				state.overlays = append(state.overlays[:i], state.overlays[i+1:]...)
				return true
			}
		}
		return false

	case ActionSelect:
		found := false
		for _, o := range state.overlays {
			if o.ID == action.ID {
				found = true
			}
		}
		if !found && action.ID != "" {
			return false
		}
		selectOnly(state.overlays, action.ID)
		return true

	case ActionUpdate:
		o := findOverlay(state, action.ID)
		if o == nil || action.Update == nil {
			return false
		}
		applyOverlayUpdate(o, *action.Update)
		return true

	case ActionDuplicate:
		src := findOverlay(state, action.ID)
		if src == nil {
			return false
		}
		clone := cloneOverlay(src, action.NewID, p)
		clone.ZIndex = maxZIndex(state.overlays) + 1
		selectOnly(state.overlays, "")
		clone.IsSelected = true
		state.overlays = append(state.overlays, clone)
		return true

	case ActionMove:
		o := findOverlay(state, action.ID)
		if o == nil || o.IsLocked {
			return false
		}
		o.Position = clampPos(p, action.Position, o.Size)
		return true

	case ActionResize:
		o := findOverlay(state, action.ID)
		if o == nil || o.IsLocked {
			return false
		}
		o.Size = clampOverlaySize(action.Size, p)
		o.Position = clampPos(p, o.Position, o.Size)
		return true

	case ActionRotate:
		o := findOverlay(state, action.ID)
		if o == nil || o.IsLocked {
			return false
		}
		o.Rotation = action.Rotation
		return true

	case ActionSetOpacity:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		o.Opacity = clampUnit(action.Opacity)
		return true

	case ActionSetTiming:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		o.Timing = NewTiming(action.Timing.StartTime, action.Timing.Duration)
		return true

	case ActionSetVisibility:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		o.IsVisible = action.Visible
		return true

	case ActionSetLock:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		o.IsLocked = action.Locked
		return true

	case ActionBringToFront:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		o.ZIndex = maxZIndex(state.overlays) + 1
		return true

	case ActionSendToBack:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		o.ZIndex = minZIndex(state.overlays) - 1
		return true

	case ActionCopy:
		o := findOverlay(state, action.ID)
		if o == nil {
			return false
		}
		c := *o
		state.clipboard = &c
		return true

	case ActionPaste:
		if state.clipboard == nil {
			return false
		}
		clone := cloneOverlay(state.clipboard, action.NewID, p)
		clone.ZIndex = maxZIndex(state.overlays) + 1
		selectOnly(state.overlays, "")
		clone.IsSelected = true
		state.overlays = append(state.overlays, clone)
		return true

	case ActionClearClipboard:
		if state.clipboard == nil {
			return false
		}
		state.clipboard = nil
		return true

	case ActionBulkRestore:
		state.overlays = make([]*Overlay, 0, len(action.Overlays))
		for i := range action.Overlays {
			o := action.Overlays[i]
			state.overlays = append(state.overlays, &o)
		}
		return true

	case ActionBulkTiming:
		changed := false
		for _, o := range state.overlays {
			if timing, ok := action.Timings[o.ID]; ok {
				next := NewTiming(timing.StartTime, timing.Duration)
				if o.Timing != next {
					o.Timing = next
					changed = true
				}
			}
		}
		return changed
	}
	return false
}

// cloneOverlay builds the Duplicate/Paste clone: new id, offset and
// clamped position, zIndex above everything else.
func cloneOverlay(src *Overlay, newID string, p policy) *Overlay {
	clone := *src
	if newID == "" {
		newID = uuid.New().String()
	}
	clone.ID = newID
	clone.Position = clampPos(p, geometry.Position{
		X: src.Position.X + p.duplicateOffset.X,
		Y: src.Position.Y + p.duplicateOffset.Y,
	}, clone.Size)
	clone.IsSelected = false
	clone.IsLocked = false
	return &clone
}

func clampOverlaySize(size geometry.Size, p policy) geometry.Size {
	if p.minAxis == 0 && p.maxAxis == 0 {
		return size
	}
	return geometry.ClampSize(size, p.minAxis, p.maxAxis)
}

func applyOverlayUpdate(o *Overlay, u OverlayUpdate) {
	if u.Text != nil {
		o.Text = *u.Text
	}
	if u.URL != nil {
		o.URL = *u.URL
	}
	if u.Style != nil {
		o.Style = u.Style
	}
	if u.Animation != nil {
		o.Animation = *u.Animation
	}
	if u.IsVisible != nil {
		o.IsVisible = *u.IsVisible
	}
	if u.Shadow != nil {
		o.Shadow = u.Shadow
	}
	if u.Outline != nil {
		o.Outline = u.Outline
	}
	if u.Background != nil {
		o.Background = u.Background
	}
}

func findOverlay(state *overlayState, id string) *Overlay {
	for _, o := range state.overlays {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// selectOnly marks the overlay with the given id selected and clears
// every other selection. Selection is exclusive.
func selectOnly(overlays []*Overlay, id string) {
	for _, o := range overlays {
		o.IsSelected = o.ID == id && id != ""
	}
}

func maxZIndex(overlays []*Overlay) int {
	if len(overlays) == 0 {
		return 0
	}
	max := overlays[0].ZIndex
	for _, o := range overlays[1:] {
		if o.ZIndex > max {
			max = o.ZIndex
		}
	}
	return max
}

func minZIndex(overlays []*Overlay) int {
	if len(overlays) == 0 {
		return 0
	}
	min := overlays[0].ZIndex
	for _, o := range overlays[1:] {
		if o.ZIndex < min {
			min = o.ZIndex
		}
	}
	return min
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
