package dom

import (
	"reflect"
	"testing"
	"time"

	"github.com/wippyai/wasm-dom/event"
)

// tree builds window > document > app > panel > button.
func tree(t *testing.T) *Document {
	t.Helper()
	d, err := LoadFixture(Fixture{Elements: []ElementFixture{
		{ID: "app"},
		{ID: "panel", Parent: "app"},
		{ID: "button", Parent: "panel"},
	}})
	if err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
	return d
}

func el(t *testing.T, d *Document, id string) *Element {
	t.Helper()
	e, ok := d.Element(id)
	if !ok {
		t.Fatalf("element %q missing", id)
	}
	return e
}

type recorder struct {
	log []string
}

func (r *recorder) on(name string) Listener {
	return func(ev *event.Event) {
		r.log = append(r.log, name+":"+phaseName(ev.Phase))
	}
}

func phaseName(p event.Phase) string {
	switch p {
	case event.PhaseCapturing:
		return "capture"
	case event.PhaseAtTarget:
		return "target"
	case event.PhaseBubbling:
		return "bubble"
	}
	return "none"
}

func listenAll(d *Document, r *recorder, t *testing.T) {
	for _, id := range []string{"app", "panel", "button"} {
		e := el(t, d, id)
		e.AddEventListener("click", r.on(id), true)
		e.AddEventListener("click", r.on(id), false)
	}
	d.AddEventListener("click", r.on("document"), true)
	d.AddEventListener("click", r.on("document"), false)
	d.Window().AddEventListener("click", r.on("window"), true)
	d.Window().AddEventListener("click", r.on("window"), false)
}

func TestDispatch_Order(t *testing.T) {
	d := tree(t)
	r := &recorder{}
	listenAll(d, r, t)

	if !d.Dispatch(el(t, d, "button"), event.New("click", event.Bubbles)) {
		t.Error("Dispatch returned false for uncanceled event")
	}
	want := []string{
		"window:capture", "document:capture", "app:capture", "panel:capture",
		"button:target", "button:target",
		"panel:bubble", "app:bubble", "document:bubble", "window:bubble",
	}
	if !reflect.DeepEqual(r.log, want) {
		t.Errorf("order =\n%v\nwant\n%v", r.log, want)
	}
}

func TestDispatch_NonBubbling(t *testing.T) {
	d := tree(t)
	r := &recorder{}
	listenAll(d, r, t)

	d.Dispatch(el(t, d, "panel"), event.New("click", 0))
	want := []string{
		"window:capture", "document:capture", "app:capture",
		"panel:target", "panel:target",
	}
	if !reflect.DeepEqual(r.log, want) {
		t.Errorf("order = %v, want %v", r.log, want)
	}
}

func TestDispatch_StopPropagation(t *testing.T) {
	d := tree(t)
	r := &recorder{}
	panel := el(t, d, "panel")
	panel.AddEventListener("click", func(ev *event.Event) { ev.StopPropagation() }, false)
	listenAll(d, r, t)

	d.Dispatch(el(t, d, "button"), event.New("click", event.Bubbles))
	// panel's other bubble listener still runs, the ancestors do not
	want := []string{
		"window:capture", "document:capture", "app:capture", "panel:capture",
		"button:target", "button:target",
		"panel:bubble",
	}
	if !reflect.DeepEqual(r.log, want) {
		t.Errorf("order = %v, want %v", r.log, want)
	}
}

func TestDispatch_StopImmediatePropagation(t *testing.T) {
	d := tree(t)
	r := &recorder{}
	button := el(t, d, "button")
	button.AddEventListener("click", r.on("first"), false)
	button.AddEventListener("click", func(ev *event.Event) { ev.StopImmediatePropagation() }, false)
	button.AddEventListener("click", r.on("third"), false)
	el(t, d, "panel").AddEventListener("click", r.on("panel"), false)

	d.Dispatch(button, event.New("click", event.Bubbles))
	if want := []string{"first:target"}; !reflect.DeepEqual(r.log, want) {
		t.Errorf("order = %v, want %v", r.log, want)
	}
}

func TestDispatch_PreventDefault(t *testing.T) {
	d := tree(t)
	d.Window().AddEventListener("submit", func(ev *event.Event) { ev.PreventDefault() }, true)

	if d.Dispatch(el(t, d, "app"), event.New("submit", event.Cancelable)) {
		t.Error("canceled cancelable event returned true")
	}
	if !d.Dispatch(el(t, d, "app"), event.New("submit", 0)) {
		t.Error("non-cancelable event reported canceled")
	}
}

func TestDispatch_TargetKinds(t *testing.T) {
	d := tree(t)
	var seen []event.TargetKind
	rec := func(ev *event.Event) { seen = append(seen, ev.Target, ev.CurrentTarget) }
	d.Window().AddEventListener("visibilitychange", rec, false)
	d.AddEventListener("visibilitychange", rec, false)

	ev := event.New("visibilitychange", event.Bubbles)
	d.Dispatch(d, ev)
	want := []event.TargetKind{
		event.TargetDocument, event.TargetDocument,
		event.TargetDocument, event.TargetWindow,
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("target/current = %v, want %v", seen, want)
	}
	if ev.Phase != event.PhaseNone {
		t.Errorf("phase after dispatch = %d, want none", ev.Phase)
	}
}

func TestDispatch_RemoveDuringDispatch(t *testing.T) {
	d := tree(t)
	button := el(t, d, "button")
	ran := 0
	var second ListenerID
	button.AddEventListener("click", func(*event.Event) {
		button.RemoveEventListener(second)
	}, false)
	second = button.AddEventListener("click", func(*event.Event) { ran++ }, false)

	d.Dispatch(button, event.New("click", 0))
	if ran != 0 {
		t.Error("listener removed during dispatch still ran")
	}
	if button.ListenerCount("click") != 1 {
		t.Errorf("ListenerCount = %d, want 1", button.ListenerCount("click"))
	}
}

func TestDispatch_TimeStamp(t *testing.T) {
	d := tree(t)
	base := time.Unix(1000, 0)
	now := base
	d.SetClock(func() time.Time { return now })
	now = base.Add(1500 * time.Millisecond)

	ev := event.New("click", 0)
	d.Dispatch(el(t, d, "app"), ev)
	if ev.TimeStamp != 1500 {
		t.Errorf("TimeStamp = %v, want 1500", ev.TimeStamp)
	}
	if ev.TargetID != "app" {
		t.Errorf("TargetID = %q, want app", ev.TargetID)
	}

	preset := event.New("click", 0)
	preset.TimeStamp = 7
	d.Dispatch(el(t, d, "app"), preset)
	if preset.TimeStamp != 7 {
		t.Errorf("preset TimeStamp overwritten: %v", preset.TimeStamp)
	}
}

func TestDispatchID(t *testing.T) {
	d := tree(t)
	hits := map[string]int{}
	d.Window().AddEventListener("resize", func(*event.Event) { hits["window"]++ }, false)
	d.AddEventListener("resize", func(*event.Event) { hits["document"]++ }, false)

	if _, found := d.DispatchID("window", event.New("resize", 0)); !found {
		t.Error("window did not resolve")
	}
	if _, found := d.DispatchID("document", event.New("resize", 0)); !found {
		t.Error("document did not resolve")
	}
	if _, found := d.DispatchID("nope", event.New("resize", 0)); found {
		t.Error("unknown id resolved")
	}
	if hits["window"] != 1 || hits["document"] != 1 {
		t.Errorf("hits = %v", hits)
	}
}

func TestListen_Detach(t *testing.T) {
	d := tree(t)
	n := 0
	detach := d.Window().Listen("scroll", false, func(*event.Event) { n++ })
	d.Dispatch(d.Window(), event.New("scroll", 0))
	detach()
	d.Dispatch(d.Window(), event.New("scroll", 0))
	if n != 1 {
		t.Errorf("listener ran %d times, want 1", n)
	}
}
