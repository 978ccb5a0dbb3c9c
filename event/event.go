package event

// Phase is the event dispatch phase.
type Phase uint8

const (
	PhaseNone      Phase = 0
	PhaseCapturing Phase = 1
	PhaseAtTarget  Phase = 2
	PhaseBubbling  Phase = 3
)

// TargetKind tells the guest whether a target is the document, the window or
// neither. It is encoded as a u32.
type TargetKind uint32

const (
	TargetElement  TargetKind = 0
	TargetDocument TargetKind = 1
	TargetWindow   TargetKind = 2
)

func (k TargetKind) String() string {
	switch k {
	case TargetDocument:
		return "document"
	case TargetWindow:
		return "window"
	default:
		return "element"
	}
}

// Options is the bit set encoded in the record's options byte.
type Options uint8

const (
	Bubbles    Options = 1 << 0
	Cancelable Options = 1 << 1
	Composed   Options = 1 << 2

	optionMask = Bubbles | Cancelable | Composed
)

// Kind selects the variant payload of a record.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindWheel
	KindMouse
	KindKeyboard
	KindScroll
	KindVisibility
)

func (k Kind) String() string {
	switch k {
	case KindWheel:
		return "wheel"
	case KindMouse:
		return "mouse"
	case KindKeyboard:
		return "keyboard"
	case KindScroll:
		return "scroll"
	case KindVisibility:
		return "visibility"
	default:
		return "generic"
	}
}

// Payload is the type-specific part of an event: *Wheel, *Mouse or *Keyboard.
type Payload interface {
	payload()
}

// Modifiers holds the modifier key state shared by mouse and keyboard events.
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// DeltaMode is the unit of wheel deltas.
type DeltaMode uint32

const (
	DeltaPixel DeltaMode = 0
	DeltaLine  DeltaMode = 1
	DeltaPage  DeltaMode = 2
)

// Wheel is the payload of wheel events.
type Wheel struct {
	DeltaX    float64
	DeltaY    float64
	DeltaZ    float64
	DeltaMode DeltaMode
}

// Mouse is the payload of mouse events. Coordinates are whole pixels.
type Mouse struct {
	ScreenX   int64
	ScreenY   int64
	ClientX   int64
	ClientY   int64
	OffsetX   int64
	OffsetY   int64
	PageX     int64
	PageY     int64
	MovementX int64
	MovementY int64
	Modifiers
	Button  int16
	Buttons uint16
}

// Location is the physical location of a key on the keyboard.
type Location uint8

const (
	LocationStandard Location = 0
	LocationLeft     Location = 1
	LocationRight    Location = 2
	LocationNumpad   Location = 3
)

// Keyboard is the payload of keyboard events.
type Keyboard struct {
	Key      string
	Code     string
	Location Location
	Modifiers
	Repeat bool
}

func (*Wheel) payload()    {}
func (*Mouse) payload()    {}
func (*Keyboard) payload() {}

// Event is a host event being dispatched to the guest.
type Event struct {
	Payload       Payload
	Type          string
	TargetID      string
	TimeStamp     float64 // milliseconds since the document was created
	Target        TargetKind
	CurrentTarget TargetKind
	Phase         Phase
	Options       Options
	IsComposing   bool
	IsTrusted     bool

	stopped          bool
	stoppedImmediate bool
	defaultPrevented bool
}

// New creates an event of the given type.
func New(typ string, opts Options) *Event {
	return &Event{Type: typ, Options: opts & optionMask}
}

// Bubbles reports whether the event bubbles.
func (e *Event) Bubbles() bool { return e.Options&Bubbles != 0 }

// Cancelable reports whether PreventDefault has an effect.
func (e *Event) Cancelable() bool { return e.Options&Cancelable != 0 }

// StopPropagation stops the event after the current target's listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// StopImmediatePropagation stops the event before the next listener.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedImmediate = true
}

// PreventDefault marks a cancelable event as canceled.
func (e *Event) PreventDefault() {
	if e.Cancelable() {
		e.defaultPrevented = true
	}
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// ImmediatePropagationStopped reports whether StopImmediatePropagation was called.
func (e *Event) ImmediatePropagationStopped() bool { return e.stoppedImmediate }

// DefaultPrevented reports whether PreventDefault canceled the event.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Classify decides which variant payload e encodes to. The payload type
// wins; otherwise the scroll and visibilitychange types select their
// window/document variants.
func Classify(e *Event) Kind {
	switch e.Payload.(type) {
	case *Wheel:
		return KindWheel
	case *Mouse:
		return KindMouse
	case *Keyboard:
		return KindKeyboard
	}
	switch e.Type {
	case "scroll":
		return KindScroll
	case "visibilitychange":
		return KindVisibility
	}
	return KindGeneric
}
