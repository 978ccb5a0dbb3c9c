// Package script replays YAML event scripts against a guest.
//
//	name: drag
//	steps:
//	  - type: mousedown
//	    target: canvas
//	    mouse: {client_x: 10, client_y: 10, buttons: 1}
//	  - type: wheel
//	    target: canvas
//	    wheel: {delta_y: 3, mode: line}
//	  - type: keydown
//	    keyboard: {key: a, code: KeyA, shift: true}
//	  - type: scroll
//	    scroll: {x: 0, y: 120}
//	  - type: visibilitychange
//	    target: document
//	    hidden: true
//	  - frames: 3
//	    dt: 16
//
// Steps without a target go to the window. Steps without options use the
// usual options of their event type (click bubbles and is cancelable,
// scroll does neither).
package script
