// Package wasmdom bridges a WebAssembly guest and a host that speaks in typed,
// structured values: strings, 64-bit integers, float arrays and DOM-style
// events.
//
// The guest can only exchange flat integers, floats and its own linear memory
// with the host. Every richer value is serialized into or out of that memory
// according to a fixed layout both sides agree on.
//
// # Architecture Overview
//
//	wasmdom/          Root package with the Memory interface
//	├── memory/       Typed view over linear memory (scalars, arrays, text)
//	├── event/        Host event model and the event record encoder/decoder
//	├── listener/     Listener registry keyed by (data, callback) pairs
//	├── dom/          Headless document, window and element model
//	├── host/         odin_env and odin_dom host modules for wazero
//	├── runtime/      Guest loading and event dispatch
//	├── config/       Viper-backed configuration
//	├── script/       YAML event scripts
//	└── errors/       Structured error types
//
// # Quick Start
//
//	doc := dom.NewDocument()
//	if _, err := doc.CreateElement("canvas", nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	rt, err := runtime.New(ctx, cfg, logger, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	if err := rt.Load(ctx, wasmBytes); err != nil {
//	    log.Fatal(err)
//	}
//
//	ev := event.New("click", event.Bubbles|event.Cancelable)
//	ev.Payload = &event.Mouse{ClientX: 120, ClientY: 45}
//	rt.Dispatch(ctx, "canvas", ev)
//
// # Native Width
//
// The guest picks the size of its default integer type at startup: 4 bytes
// for wasm32, 8 bytes for wasm64p32. Pointers stay 32-bit in both cases. All
// width-dependent decisions are made inside memory.View.
//
// # Thread Safety
//
// memory.View, event.Encoder and host.Bridge are single-threaded, matching the
// guest's execution model. runtime.Runtime serializes access with a mutex.
package wasmdom
