// Package runtime loads a wasm guest that targets the odin_env and
// odin_dom imports and drives it with host events.
//
// # Quick Start
//
//	ctx := context.Background()
//	cfg := config.Default()
//	doc, err := cfg.LoadDocument()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt, err := runtime.New(ctx, cfg, logger, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	if err := rt.LoadFile(ctx, "app.wasm"); err != nil {
//	    log.Fatal(err)
//	}
//
//	ev := event.New("click", event.Bubbles|event.Cancelable)
//	ev.Payload = &event.Mouse{ClientX: 10, ClientY: 20, Buttons: 1}
//	notCanceled, err := rt.Dispatch(ctx, "canvas", ev)
//
// # Guest Exports
//
// The guest must export its memory and the event trampoline
// (odin_dom_do_event_callback by default) taking (data, callback, ctx).
// Optional exports, each renamable in config:
//
//	default_context_ptr() i32   context pointer passed to the trampoline
//	_start()                    called once by Load
//	step(dt f64) i32            called by Step; 0 stops further frames
//	_end()                      called once by Close
//
// wazero's automatic start functions are disabled so _start runs after the
// bridge can deliver events to the guest.
package runtime
