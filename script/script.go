package script

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
)

// Script is a named list of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one entry of a script. A step with a type dispatches an event;
// a step with frames and no type advances the guest's step export.
type Step struct {
	Mouse    *MouseStep    `yaml:"mouse"`
	Wheel    *WheelStep    `yaml:"wheel"`
	Keyboard *KeyboardStep `yaml:"keyboard"`
	Scroll   *ScrollStep   `yaml:"scroll"`
	Hidden   *bool         `yaml:"hidden"`
	Value    *string       `yaml:"value"`
	Trusted  *bool         `yaml:"trusted"`
	Expect   *Expect       `yaml:"expect"`
	Type     string        `yaml:"type"`
	Target   string        `yaml:"target"`
	Options  []string      `yaml:"options"`
	Frames   int           `yaml:"frames"`
	DT       float64       `yaml:"dt"`
}

// MouseStep is the mouse payload of a step.
type MouseStep struct {
	Modifiers `yaml:",inline"`
	ScreenX   int64  `yaml:"screen_x"`
	ScreenY   int64  `yaml:"screen_y"`
	ClientX   int64  `yaml:"client_x"`
	ClientY   int64  `yaml:"client_y"`
	OffsetX   int64  `yaml:"offset_x"`
	OffsetY   int64  `yaml:"offset_y"`
	PageX     int64  `yaml:"page_x"`
	PageY     int64  `yaml:"page_y"`
	MovementX int64  `yaml:"movement_x"`
	MovementY int64  `yaml:"movement_y"`
	Button    int16  `yaml:"button"`
	Buttons   uint16 `yaml:"buttons"`
}

// WheelStep is the wheel payload of a step.
type WheelStep struct {
	Mode   string  `yaml:"mode"` // pixel, line or page
	DeltaX float64 `yaml:"delta_x"`
	DeltaY float64 `yaml:"delta_y"`
	DeltaZ float64 `yaml:"delta_z"`
}

// KeyboardStep is the keyboard payload of a step.
type KeyboardStep struct {
	Modifiers `yaml:",inline"`
	Key       string `yaml:"key"`
	Code      string `yaml:"code"`
	Location  string `yaml:"location"` // standard, left, right or numpad
	Repeat    bool   `yaml:"repeat"`
	Composing bool   `yaml:"composing"`
}

// Modifiers are the modifier keys held during a mouse or keyboard step.
type Modifiers struct {
	Ctrl  bool `yaml:"ctrl"`
	Shift bool `yaml:"shift"`
	Alt   bool `yaml:"alt"`
	Meta  bool `yaml:"meta"`
}

// ScrollStep moves the window before the step's event is dispatched.
type ScrollStep struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Expect checks the outcome of a dispatch.
type Expect struct {
	Canceled bool `yaml:"canceled"`
}

// defaultOptions are used when a step lists no options.
var defaultOptions = map[string]event.Options{
	"click":       event.Bubbles | event.Cancelable,
	"dblclick":    event.Bubbles | event.Cancelable,
	"contextmenu": event.Bubbles | event.Cancelable,
	"mousedown":   event.Bubbles | event.Cancelable,
	"mouseup":     event.Bubbles | event.Cancelable,
	"mousemove":   event.Bubbles | event.Cancelable,
	"mouseover":   event.Bubbles | event.Cancelable,
	"mouseout":    event.Bubbles | event.Cancelable,
	"wheel":       event.Bubbles | event.Cancelable,
	"keydown":     event.Bubbles | event.Cancelable,
	"keyup":       event.Bubbles | event.Cancelable,
	"keypress":    event.Bubbles | event.Cancelable,
	"input":       event.Bubbles,
	"change":      event.Bubbles,
}

var optionNames = map[string]event.Options{
	"bubbles":    event.Bubbles,
	"cancelable": event.Cancelable,
	"composed":   event.Composed,
}

var deltaModes = map[string]event.DeltaMode{
	"":      event.DeltaPixel,
	"pixel": event.DeltaPixel,
	"line":  event.DeltaLine,
	"page":  event.DeltaPage,
}

var locations = map[string]event.Location{
	"":         event.LocationStandard,
	"standard": event.LocationStandard,
	"left":     event.LocationLeft,
	"right":    event.LocationRight,
	"numpad":   event.LocationNumpad,
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.ParseFailed("event script", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, "read event script")
	}
	return Parse(data)
}

// Validate checks every step can be turned into an event.
func (s *Script) Validate() error {
	for i := range s.Steps {
		if _, err := s.Steps[i].Event(); err != nil {
			return err
		}
	}
	return nil
}

// TargetID returns the id the step's event is dispatched at. Steps without
// a target go to the window.
func (st *Step) TargetID() string {
	if st.Target == "" {
		return dom.WindowID
	}
	return st.Target
}

// Event builds the step's event. Frame-only steps return nil.
func (st *Step) Event() (*event.Event, error) {
	if st.Type == "" {
		if st.Frames <= 0 {
			return nil, invalid(st, "step needs a type or frames")
		}
		return nil, nil
	}

	payloads := 0
	for _, set := range []bool{st.Mouse != nil, st.Wheel != nil, st.Keyboard != nil} {
		if set {
			payloads++
		}
	}
	if payloads > 1 {
		return nil, invalid(st, "step has more than one payload")
	}

	opts := defaultOptions[st.Type]
	if st.Options != nil {
		opts = 0
		for _, name := range st.Options {
			o, known := optionNames[strings.ToLower(name)]
			if !known {
				return nil, invalid(st, "unknown option "+name)
			}
			opts |= o
		}
	}

	ev := event.New(st.Type, opts)
	ev.IsTrusted = st.Trusted == nil || *st.Trusted

	switch {
	case st.Mouse != nil:
		m := st.Mouse
		ev.Payload = &event.Mouse{
			ScreenX: m.ScreenX, ScreenY: m.ScreenY,
			ClientX: m.ClientX, ClientY: m.ClientY,
			OffsetX: m.OffsetX, OffsetY: m.OffsetY,
			PageX: m.PageX, PageY: m.PageY,
			MovementX: m.MovementX, MovementY: m.MovementY,
			Modifiers: m.Modifiers.event(),
			Button:    m.Button,
			Buttons:   m.Buttons,
		}
	case st.Wheel != nil:
		mode, known := deltaModes[strings.ToLower(st.Wheel.Mode)]
		if !known {
			return nil, invalid(st, "unknown wheel mode "+st.Wheel.Mode)
		}
		ev.Payload = &event.Wheel{
			DeltaX:    st.Wheel.DeltaX,
			DeltaY:    st.Wheel.DeltaY,
			DeltaZ:    st.Wheel.DeltaZ,
			DeltaMode: mode,
		}
	case st.Keyboard != nil:
		k := st.Keyboard
		loc, known := locations[strings.ToLower(k.Location)]
		if !known {
			return nil, invalid(st, "unknown key location "+k.Location)
		}
		ev.Payload = &event.Keyboard{
			Key:       k.Key,
			Code:      k.Code,
			Location:  loc,
			Modifiers: k.Modifiers.event(),
			Repeat:    k.Repeat,
		}
		ev.IsComposing = k.Composing
	}
	return ev, nil
}

func (m Modifiers) event() event.Modifiers {
	return event.Modifiers{Ctrl: m.Ctrl, Shift: m.Shift, Alt: m.Alt, Meta: m.Meta}
}

func invalid(st *Step, detail string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Path("steps", st.Type).
		Detail("%s", detail).
		Build()
}
