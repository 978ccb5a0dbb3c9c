package main

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/wasm-dom/event"
)

type namedKey struct {
	key  string
	code string
}

var namedKeys = map[string]namedKey{
	"enter":     {"Enter", "Enter"},
	"tab":       {"Tab", "Tab"},
	"shift+tab": {"Tab", "Tab"},
	"backspace": {"Backspace", "Backspace"},
	"esc":       {"Escape", "Escape"},
	" ":         {" ", "Space"},
	"up":        {"ArrowUp", "ArrowUp"},
	"down":      {"ArrowDown", "ArrowDown"},
	"left":      {"ArrowLeft", "ArrowLeft"},
	"right":     {"ArrowRight", "ArrowRight"},
	"home":      {"Home", "Home"},
	"end":       {"End", "End"},
	"pgup":      {"PageUp", "PageUp"},
	"pgdown":    {"PageDown", "PageDown"},
	"delete":    {"Delete", "Delete"},
	"insert":    {"Insert", "Insert"},
}

// keyEvent turns a terminal key press into a keydown event. Terminals
// report no key releases, so there is no matching keyup.
func keyEvent(msg tea.KeyMsg) *event.Event {
	k := &event.Keyboard{}
	k.Alt = msg.Alt
	s := msg.String()
	if msg.Alt {
		s = strings.TrimPrefix(s, "alt+")
	}

	switch {
	case msg.Type == tea.KeyRunes:
		k.Key = string(msg.Runes)
		if len(msg.Runes) == 1 {
			r := msg.Runes[0]
			k.Code = runeCode(r)
			k.Shift = unicode.IsUpper(r)
		}
	case strings.HasPrefix(s, "ctrl+"):
		k.Ctrl = true
		k.Key = strings.TrimPrefix(s, "ctrl+")
		if len(k.Key) == 1 {
			k.Code = runeCode(rune(k.Key[0]))
		}
	default:
		if nk, ok := namedKeys[s]; ok {
			k.Key, k.Code = nk.key, nk.code
			k.Shift = strings.HasPrefix(s, "shift+")
		} else if len(s) > 1 && s[0] == 'f' && isDigits(s[1:]) {
			k.Key = strings.ToUpper(s)
			k.Code = k.Key
		} else {
			k.Key = s
		}
	}

	ev := event.New("keydown", event.Bubbles|event.Cancelable)
	ev.Payload = k
	ev.IsComposing = msg.Paste
	return ev
}

func runeCode(r rune) string {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return "Key" + string(unicode.ToUpper(r))
	case r >= '0' && r <= '9':
		return "Digit" + string(r)
	case r == ' ':
		return "Space"
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// pointer tracks the mouse between terminal reports.
type pointer struct {
	x, y    int
	buttons uint16
	seen    bool
}

func buttonOf(b tea.MouseButton) (button int16, mask uint16, ok bool) {
	switch b {
	case tea.MouseButtonLeft:
		return 0, 1, true
	case tea.MouseButtonMiddle:
		return 1, 4, true
	case tea.MouseButtonRight:
		return 2, 2, true
	}
	return 0, 0, false
}

// mouseEvents turns a terminal mouse report into DOM events: wheel,
// mousedown, mouseup followed by click, or mousemove.
func (p *pointer) mouseEvents(msg tea.MouseMsg) []*event.Event {
	me := tea.MouseEvent(msg)
	mods := event.Modifiers{Ctrl: me.Ctrl, Shift: me.Shift, Alt: me.Alt}

	if me.IsWheel() {
		w := &event.Wheel{DeltaMode: event.DeltaLine}
		switch me.Button {
		case tea.MouseButtonWheelUp:
			w.DeltaY = -1
		case tea.MouseButtonWheelDown:
			w.DeltaY = 1
		case tea.MouseButtonWheelLeft:
			w.DeltaX = -1
		case tea.MouseButtonWheelRight:
			w.DeltaX = 1
		}
		ev := event.New("wheel", event.Bubbles|event.Cancelable)
		ev.Payload = w
		return []*event.Event{ev}
	}

	dx, dy := 0, 0
	if p.seen {
		dx, dy = me.X-p.x, me.Y-p.y
	}
	p.x, p.y, p.seen = me.X, me.Y, true

	button, mask, isButton := buttonOf(me.Button)
	mouse := func(typ string) *event.Event {
		ev := event.New(typ, event.Bubbles|event.Cancelable)
		ev.Payload = &event.Mouse{
			ScreenX:   int64(me.X),
			ScreenY:   int64(me.Y),
			ClientX:   int64(me.X),
			ClientY:   int64(me.Y),
			PageX:     int64(me.X),
			PageY:     int64(me.Y),
			MovementX: int64(dx),
			MovementY: int64(dy),
			Modifiers: mods,
			Button:    button,
			Buttons:   p.buttons,
		}
		return ev
	}

	switch me.Action {
	case tea.MouseActionPress:
		if isButton {
			p.buttons |= mask
		}
		return []*event.Event{mouse("mousedown")}
	case tea.MouseActionRelease:
		if isButton {
			p.buttons &^= mask
		}
		up := mouse("mouseup")
		if me.Button == tea.MouseButtonLeft || me.Button == tea.MouseButtonNone {
			return []*event.Event{up, mouse("click")}
		}
		return []*event.Event{up}
	default:
		return []*event.Event{mouse("mousemove")}
	}
}
