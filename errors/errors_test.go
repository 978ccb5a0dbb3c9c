package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindOutOfBounds,
				Path:   []string{"keyboard", "key"},
				Type:   "u8",
				Detail: "access past end",
			},
			contains: []string{"[encode]", "out_of_bounds", "keyboard.key", "type u8", "access past end"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLoad,
				Kind:  KindUnbound,
			},
			contains: []string{"[load]", "unbound"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDispatch,
				Kind:   KindGuestTrap,
				Detail: "callback failed",
				Cause:  errors.New("unreachable"),
			},
			contains: []string{"[dispatch]", "guest_trap", "callback failed", "caused by", "unreachable"},
		},
		{
			name:     "sentinel without phase",
			err:      ErrNoActiveEvent,
			contains: []string{"no_active_event"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseStore,
		Kind:  KindOutOfBounds,
		Type:  "u32",
	}

	if !err.Is(&Error{Phase: PhaseStore, Kind: KindOutOfBounds}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLoad, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseStore, Kind: KindUnbound}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrOutOfBounds) {
		t.Error("errors.Is should match the kind sentinel")
	}
	if errors.Is(err, ErrUnbound) {
		t.Error("errors.Is should not match another sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLoad, KindOutOfBounds).
		Path("mouse", "client_x").
		Type("i64").
		Value(uint32(42)).
		Cause(cause).
		Detail("offset %d past %d", 42, 40).
		Build()

	if err.Phase != PhaseLoad {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLoad)
	}
	if err.Kind != KindOutOfBounds {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
	}
	if len(err.Path) != 2 || err.Path[0] != "mouse" || err.Path[1] != "client_x" {
		t.Errorf("Path = %v, want [mouse client_x]", err.Path)
	}
	if err.Type != "i64" {
		t.Errorf("Type = %v, want 'i64'", err.Type)
	}
	if err.Value != uint32(42) {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "offset 42 past 40" {
		t.Errorf("Detail = %v, want 'offset 42 past 40'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseLoad, "u64", 60, 8, 64)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint64(60) {
			t.Errorf("Value = %v, want 60", err.Value)
		}
		if !strings.Contains(err.Detail, "[60, 68)") {
			t.Errorf("Detail = %q, should contain the access range", err.Detail)
		}
	})

	t.Run("Unbound", func(t *testing.T) {
		err := Unbound(PhaseStore, "f32")
		if !errors.Is(err, ErrUnbound) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnbound)
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		err := NotConfigured(PhaseLoad, "u8")
		if !errors.Is(err, ErrUnbound) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnbound)
		}
		if errors.Is(err, ErrUnsupportedWidth) {
			t.Error("NotConfigured should not match ErrUnsupportedWidth")
		}
	})

	t.Run("UnsupportedWidth", func(t *testing.T) {
		err := UnsupportedWidth(PhaseConfigure, 2)
		if !errors.Is(err, ErrUnsupportedWidth) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedWidth)
		}
		if err.Value != uint32(2) {
			t.Errorf("Value = %v, want 2", err.Value)
		}
	})

	t.Run("NoActiveEvent", func(t *testing.T) {
		err := NoActiveEvent()
		if err.Phase != PhaseEncode || !errors.Is(err, ErrNoActiveEvent) {
			t.Errorf("got %v, want encode/no_active_event", err)
		}
	})

	t.Run("Misaligned", func(t *testing.T) {
		err := Misaligned(PhaseLoad, "f64", 12, 8)
		if !errors.Is(err, ErrMisaligned) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMisaligned)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseRuntime, "export", "memory")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Detail, `"memory"`) {
			t.Errorf("Detail = %q, should quote the name", err.Detail)
		}
	})

	t.Run("GuestTrap", func(t *testing.T) {
		cause := errors.New("wasm error: unreachable")
		err := GuestTrap("odin_dom_do_event_callback", cause)
		if !errors.Is(err, cause) {
			t.Error("GuestTrap should wrap its cause")
		}
	})
}
