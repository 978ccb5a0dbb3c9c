// Package event models host DOM events and serializes them into guest memory.
//
// An Event is a closed tagged union: a common prefix shared by every event
// plus at most one payload (Wheel, Mouse, Keyboard). Scroll and
// visibilitychange events carry no payload of their own; their variant data
// is read from the window and document state (Env) at encode time.
//
// # Record Layout
//
// The record is the protocol. The guest parses it with its own struct
// definition, so every offset must match the guest's alignment rules:
//
//   - Each field is aligned to min(size, native width) unless a field
//     overrides its alignment.
//   - Explicit alignment to the native width precedes the element id, and
//     alignment to 8 precedes the timestamp and the variant payload.
//
// Common prefix, in order: name code (u32), target kind (u32), current
// target kind (u32), element id pointer (int), element id length (uint),
// timestamp in seconds (f64), phase (u8), option bits (u8: bubbles,
// cancelable, composed), is_composing (u8), is_trusted (u8).
//
// Variant payloads:
//
//	Wheel       delta_x, delta_y, delta_z (f64), delta_mode (u32)
//	Mouse       screen, client, offset, page, movement x/y (i64 each),
//	            ctrl, shift, alt, meta (u8), button (i16), buttons (u16)
//	Keyboard    key, code (string slots, left for the guest), location (u8),
//	            ctrl, shift, alt, meta, repeat (u8), key_len, code_len (int),
//	            key_buf, code_buf ([16]u8)
//	Scroll      scroll_x, scroll_y (f64)
//	Visibility  is_visible (u8)
//
// Use Layout to get the offsets for a kind and width:
//
//	for _, f := range event.Layout(event.KindMouse, wasmdom.Width32) {
//	    fmt.Println(f.Name, f.Offset, f.Size)
//	}
package event
