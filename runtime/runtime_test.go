package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tetratelabs/wazero/api"

	wasmdom "github.com/wippyai/wasm-dom"
	"github.com/wippyai/wasm-dom/config"
	"github.com/wippyai/wasm-dom/dom"
	werrors "github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/host"
	"github.com/wippyai/wasm-dom/internal/testguest"
)

func testConfig(width wasmdom.Width) *config.Config {
	cfg := config.Default()
	cfg.Width = int(width)
	cfg.Document = dom.Fixture{Elements: []dom.ElementFixture{
		{ID: "app"},
		{ID: "canvas", Parent: "app", Value: "0.25"},
	}}
	return cfg
}

func newRuntime(t *testing.T, cfg *config.Config, opts ...Option) *Runtime {
	t.Helper()
	ctx := context.Background()
	doc, err := cfg.LoadDocument()
	if err != nil {
		t.Fatal(err)
	}
	rt, err := New(ctx, cfg, nil, doc, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { rt.Close(ctx) })
	return rt
}

func loaded(t *testing.T, width wasmdom.Width, opts ...Option) *Runtime {
	t.Helper()
	rt := newRuntime(t, testConfig(width), opts...)
	if err := rt.Load(context.Background(), testguest.DOM(uint32(width))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return rt
}

func kindOf(err error) werrors.Kind {
	var we *werrors.Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

func TestRuntime_StartRegistersListeners(t *testing.T) {
	for _, width := range []wasmdom.Width{wasmdom.Width32, wasmdom.Width64} {
		rt := loaded(t, width)
		if !rt.Loaded() {
			t.Fatalf("width %d: Loaded = false", width)
		}
		if n := rt.Bridge().Registry().Len(); n != 3 {
			t.Errorf("width %d: registrations after _start = %d, want 3", width, n)
		}
	}
}

func TestRuntime_Dispatch(t *testing.T) {
	for _, width := range []wasmdom.Width{wasmdom.Width32, wasmdom.Width64} {
		rt := loaded(t, width)
		ev := event.New("click", event.Bubbles|event.Cancelable)
		ev.Payload = &event.Mouse{ClientX: 33, ClientY: 44, Buttons: 2}

		ok, err := rt.Dispatch(context.Background(), "canvas", ev)
		if err != nil {
			t.Fatalf("width %d: Dispatch failed: %v", width, err)
		}
		if !ok {
			t.Errorf("width %d: event reported canceled", width)
		}
		rec, err := event.Decode(rt.Bridge().View(), testguest.ClickRecord, event.KindMouse)
		if err != nil {
			t.Fatalf("width %d: Decode failed: %v", width, err)
		}
		if rec.Mouse.ClientX != 33 || rec.Mouse.ClientY != 44 || rec.Mouse.Buttons != 2 {
			t.Errorf("width %d: mouse = %+v", width, *rec.Mouse)
		}
		if rec.IDLen != 6 || rec.NameCode != testguest.ClickCode {
			t.Errorf("width %d: prefix = %+v", width, rec)
		}
	}
}

func TestRuntime_DispatchWindowScroll(t *testing.T) {
	rt := loaded(t, wasmdom.Width64)
	rt.Update(func(doc *dom.Document) { doc.Window().ScrollTo(3, 4) })

	if _, err := rt.Dispatch(context.Background(), dom.WindowID, event.New("scroll", 0)); err != nil {
		t.Fatal(err)
	}
	rec, err := event.Decode(rt.Bridge().View(), testguest.ScrollRecord, event.KindScroll)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Target != event.TargetWindow || rec.ScrollX != 3 || rec.ScrollY != 4 {
		t.Errorf("scroll record = %+v", rec)
	}
}

func TestRuntime_NestedCallback(t *testing.T) {
	rt := loaded(t, wasmdom.Width32)
	ctx := context.Background()
	// replace the click listener with one that dispatches a custom event
	if _, err := rt.Call(ctx, "teardown", testguest.Encode); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Call(ctx, "setup", testguest.DispatchCustom); err != nil {
		t.Fatal(err)
	}

	ev := event.New("click", event.Bubbles)
	ev.Payload = &event.Mouse{ClientX: 9}
	if _, err := rt.Dispatch(ctx, "canvas", ev); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	view := rt.Bridge().View()
	custom, err := event.Decode(view, testguest.CustomRecord, event.KindGeneric)
	if err != nil {
		t.Fatal(err)
	}
	if custom.NameCode != testguest.CustomCode || custom.IsTrusted {
		t.Errorf("custom record = %+v", custom)
	}
	click, err := event.Decode(view, testguest.ClickRecord, event.KindMouse)
	if err != nil {
		t.Fatal(err)
	}
	if click.Mouse.ClientX != 9 {
		t.Errorf("outer click record = %+v", click.Mouse)
	}

	if rt.guest.depth != 0 {
		t.Errorf("depth after dispatch = %d, want 0", rt.guest.depth)
	}
	if len(rt.guest.callback) != 2 {
		t.Errorf("callback instances = %d, want 2", len(rt.guest.callback))
	}
}

func TestRuntime_Step(t *testing.T) {
	rt := loaded(t, wasmdom.Width32)
	more, err := rt.Step(context.Background(), 16.5)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !more {
		t.Error("Step = false, want true")
	}
	bits, err := rt.Bridge().View().LoadF64(testguest.StepResult)
	if err != nil || bits != 16.5 {
		t.Errorf("step dt = %v (%v), want 16.5", bits, err)
	}

	cfg := testConfig(wasmdom.Width32)
	cfg.Guest.StepExport = ""
	rt = newRuntime(t, cfg)
	if err := rt.Load(context.Background(), testguest.DOM(4)); err != nil {
		t.Fatal(err)
	}
	if more, err := rt.Step(context.Background(), 1); more || err != nil {
		t.Errorf("Step without export = %v, %v; want false, nil", more, err)
	}
}

func TestRuntime_Sink(t *testing.T) {
	var lines []string
	rt := loaded(t, wasmdom.Width64, WithSink(func(s host.Stream, line string) {
		lines = append(lines, s.String()+":"+line)
	}))
	if _, err := rt.Call(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "stdout:hello" {
		t.Errorf("lines = %q", lines)
	}
}

func TestRuntime_Call(t *testing.T) {
	rt := loaded(t, wasmdom.Width32)
	ctx := context.Background()

	if _, err := rt.Call(ctx, "read_value"); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.Bridge().View().LoadF64(testguest.ValueResult); v != 0.25 {
		t.Errorf("read_value stored %v, want 0.25", v)
	}
	if _, err := rt.Call(ctx, "missing"); !errors.Is(err, werrors.ErrNotFound) {
		t.Errorf("missing export error = %v", err)
	}
	if _, err := rt.Call(ctx, "setup"); kindOf(err) != werrors.KindInvalidInput {
		t.Errorf("wrong arity error = %v", err)
	}
	res, err := rt.Call(ctx, "step", api.EncodeF64(2))
	if err != nil || len(res) != 1 || api.DecodeI32(res[0]) != 1 {
		t.Errorf("step = %v, %v", res, err)
	}
}

func TestRuntime_LoadErrors(t *testing.T) {
	ctx := context.Background()

	rt := newRuntime(t, testConfig(wasmdom.Width32))
	if err := rt.Load(ctx, []byte("not wasm")); kindOf(err) != werrors.KindInvalidData {
		t.Errorf("garbage load error = %v", err)
	}

	cfg := testConfig(wasmdom.Width32)
	cfg.Guest.CallbackExport = "on_event"
	rt = newRuntime(t, cfg)
	if err := rt.Load(ctx, testguest.DOM(4)); !errors.Is(err, werrors.ErrNotFound) {
		t.Errorf("missing callback error = %v", err)
	}

	cfg = testConfig(wasmdom.Width32)
	cfg.Guest.StepExport = "setup"
	rt = newRuntime(t, cfg)
	if err := rt.Load(ctx, testguest.DOM(4)); kindOf(err) != werrors.KindInvalidInput {
		t.Errorf("bad step signature error = %v", err)
	}

	rt = loaded(t, wasmdom.Width32)
	if err := rt.Load(ctx, testguest.DOM(4)); kindOf(err) != werrors.KindInvalidInput {
		t.Errorf("second load error = %v", err)
	}

	if err := rt.LoadFile(ctx, filepath.Join(t.TempDir(), "none.wasm")); !errors.Is(err, werrors.ErrNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestRuntime_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guest.wasm")
	if err := os.WriteFile(path, testguest.DOM(8), 0o600); err != nil {
		t.Fatal(err)
	}
	rt := newRuntime(t, testConfig(wasmdom.Width64))
	if err := rt.LoadFile(context.Background(), path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
}

func TestRuntime_DispatchUnknownTarget(t *testing.T) {
	rt := loaded(t, wasmdom.Width32)
	_, err := rt.Dispatch(context.Background(), "nowhere", event.New("click", 0))
	if !errors.Is(err, werrors.ErrNotFound) {
		t.Errorf("Dispatch error = %v, want not found", err)
	}
}

func TestRuntime_Close(t *testing.T) {
	ctx := context.Background()
	rt := loaded(t, wasmdom.Width32)
	mem := rt.guest.mod.Memory()
	buf, _ := mem.Read(0, mem.Size())

	if err := rt.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if buf[testguest.EndResult] != 1 {
		t.Error("_end was not called")
	}
	if rt.Bridge().Registry().Len() != 0 {
		t.Error("listeners left after Close")
	}
	if err := rt.Close(ctx); err != nil {
		t.Errorf("second Close = %v", err)
	}

	if _, err := rt.Dispatch(ctx, "canvas", event.New("click", 0)); kindOf(err) != werrors.KindNotInitialized {
		t.Errorf("Dispatch after Close = %v", err)
	}
	if err := rt.Load(ctx, testguest.DOM(4)); kindOf(err) != werrors.KindNotInitialized {
		t.Errorf("Load after Close = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, nil, nil, nil); err == nil {
		t.Error("New with nil document succeeded")
	}
	cfg := config.Default()
	cfg.Width = 3
	if _, err := New(ctx, cfg, nil, dom.NewDocument()); !errors.Is(err, werrors.ErrUnsupportedWidth) {
		t.Errorf("width 3 error = %v", err)
	}
}
