// Package host serves the odin_env and odin_dom imports of a wasm guest.
//
// A Bridge ties together the guest's memory view, the event encoder, the
// listener registry and a headless document. Every host function that
// touches memory rebinds the view to the caller's memory first, so guest
// memory growth never leaves a stale slice behind.
//
// # Event Flow
//
//	Bridge.Fire(ctx, target, ev)
//	  -> dom dispatch reaches a guest listener
//	  -> guest odin_dom_do_event_callback(data, callback, ctx)
//	  -> guest calls init_event_raw(addr)
//	  -> event.Encoder writes the record at addr
//
// The bridge keeps a stack of pending events. A guest that dispatches a
// custom event from inside its callback sees the inner event while the
// inner callback runs and the outer event again afterwards.
//
// # Native Ints
//
// Parameters the guest declares as its native int (string lengths, buffer
// sizes) are i32 for a 4-byte width and i64 for an 8-byte width. Pointers
// are always i32.
//
// # Errors
//
// Memory errors inside a host function panic with the structured error;
// wazero turns the panic into a trap whose error wraps it, so callers can
// match it with errors.Is.
package host
