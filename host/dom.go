package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/listener"
)

// DOMModule returns the odin_dom host module: event records, listener
// registration, event control, element values and window geometry.
func (b *Bridge) DOMModule() *ModuleBuilder {
	intT := b.intType()
	m := newModuleBuilder(DOMModule)

	m.Func("init_event_raw", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		base := api.DecodeU32(stack[0])
		n, err := b.Encode(base)
		switch {
		case errors.Is(err, errors.ErrNoActiveEvent):
			b.logger.Warn("init_event_raw called outside an event callback; nothing written",
				zap.Uint32("addr", base))
		case err != nil:
			panic(err)
		default:
			b.logger.Debug("event record written",
				zap.Uint32("addr", base),
				zap.Uint32("size", n),
				zap.String("type", b.Pending().Event.Type))
		}
	}, types(i32), nil)

	// add_event_listener(id, name, name_code, data, callback, use_capture) -> bool
	m.Func("add_event_listener", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		reg := listener.Registration{
			Key: listener.Key{
				ElementID: b.str(stack, 0),
				Name:      b.str(stack, 2),
				Data:      api.DecodeU32(stack[5]),
				Callback:  api.DecodeU32(stack[6]),
			},
			NameCode: api.DecodeU32(stack[4]),
			IDPtr:    api.DecodeU32(stack[0]),
			IDLen:    uint64(b.length(stack[1])),
			Capture:  api.DecodeU32(stack[7]) != 0,
		}
		stack[0] = boolResult(b.registry.Add(reg))
	}, types(i32, intT, i32, intT, i32, i32, i32, i32), types(i32))

	// remove_event_listener(id, name, data, callback) -> bool
	m.Func("remove_event_listener", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		key := listener.Key{
			ElementID: b.str(stack, 0),
			Name:      b.str(stack, 2),
			Data:      api.DecodeU32(stack[4]),
			Callback:  api.DecodeU32(stack[5]),
		}
		stack[0] = boolResult(b.registry.Remove(key))
	}, types(i32, intT, i32, intT, i32, i32), types(i32))

	// add_window_event_listener(name, name_code, data, callback, use_capture) -> bool
	m.Func("add_window_event_listener", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		reg := listener.Registration{
			Key: listener.Key{
				Name:     b.str(stack, 0),
				Data:     api.DecodeU32(stack[3]),
				Callback: api.DecodeU32(stack[4]),
			},
			NameCode: api.DecodeU32(stack[2]),
			Capture:  api.DecodeU32(stack[5]) != 0,
		}
		stack[0] = boolResult(b.registry.AddWindow(reg))
	}, types(i32, intT, i32, i32, i32, i32), types(i32))

	// remove_window_event_listener(name, data, callback) -> bool
	m.Func("remove_window_event_listener", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		name := b.str(stack, 0)
		stack[0] = boolResult(b.registry.RemoveWindow(name, api.DecodeU32(stack[2]), api.DecodeU32(stack[3])))
	}, types(i32, intT, i32, i32), types(i32))

	onPending := func(name string, fn func(*event.Event)) {
		m.Func(name, func(context.Context, api.Module, []uint64) {
			if p := b.Pending(); p != nil {
				fn(p.Event)
			}
		}, nil, nil)
	}
	onPending("event_stop_propagation", (*event.Event).StopPropagation)
	onPending("event_stop_immediate_propagation", (*event.Event).StopImmediatePropagation)
	onPending("event_prevent_default", (*event.Event).PreventDefault)

	// dispatch_custom_event(id, name, options) -> bool
	m.Func("dispatch_custom_event", func(ctx context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 0)
		name := b.str(stack, 2)
		if el == nil {
			stack[0] = 0
			return
		}
		ev := event.New(name, event.Options(api.DecodeU32(stack[4])))
		if _, err := b.Fire(ctx, el, ev); err != nil {
			panic(err)
		}
		stack[0] = 1
	}, types(i32, intT, i32, intT, i32), types(i32))

	m.Func("get_element_value_f64", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 0)
		var v float64
		if el != nil {
			v = el.ValueF64()
		}
		stack[0] = api.EncodeF64(v)
	}, types(i32, intT), types(f64))

	// get_element_value_string(id, buf) -> bytes written
	m.Func("get_element_value_string", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 0)
		ptr, capacity := api.DecodeU32(stack[2]), b.length(stack[3])
		var n int
		if el != nil && ptr != 0 && capacity > 0 {
			var err error
			if n, err = b.view.StoreStringN(ptr, el.Value(), capacity); err != nil {
				panic(err)
			}
		}
		stack[0] = b.intResult(int64(n))
	}, types(i32, intT, i32, intT), types(intT))

	m.Func("get_element_value_string_length", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 0)
		var n int
		if el != nil {
			n = len(el.Value())
		}
		stack[0] = b.intResult(int64(n))
	}, types(i32, intT), types(intT))

	// get_element_min_max(out *[2]f64, id)
	m.Func("get_element_min_max", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 1)
		if el == nil {
			return
		}
		lo, hi := el.MinMax()
		b.storeF64s(api.DecodeU32(stack[0]), lo, hi)
	}, types(i32, i32, intT), nil)

	m.Func("set_element_value_f64", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		if el, _ := b.element(stack, 0); el != nil {
			el.SetValueF64(api.DecodeF64(stack[2]))
		}
	}, types(i32, intT, f64), nil)

	m.Func("set_element_value_string", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 0)
		value := b.str(stack, 2)
		if el != nil {
			el.SetValue(value)
		}
	}, types(i32, intT, i32, intT), nil)

	// get_bounding_client_rect(out *[4]f64, id)
	m.Func("get_bounding_client_rect", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		el, _ := b.element(stack, 1)
		if el == nil {
			return
		}
		r := el.Rect()
		b.storeF64s(api.DecodeU32(stack[0]), r.X, r.Y, r.Width, r.Height)
	}, types(i32, i32, intT), nil)

	m.Func("window_get_rect", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		r := b.doc.Window().Rect()
		b.storeF64s(api.DecodeU32(stack[0]), r.X, r.Y, r.Width, r.Height)
	}, types(i32), nil)

	m.Func("window_get_scroll", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		x, y := b.doc.Window().Scroll()
		b.storeF64s(api.DecodeU32(stack[0]), x, y)
	}, types(i32), nil)

	m.Func("window_set_scroll", func(_ context.Context, _ api.Module, stack []uint64) {
		b.doc.Window().ScrollTo(api.DecodeF64(stack[0]), api.DecodeF64(stack[1]))
	}, types(f64, f64), nil)

	m.Func("device_pixel_ratio", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = api.EncodeF64(b.doc.Window().DevicePixelRatio())
	}, nil, types(f64))

	return m
}

// storeF64s writes vs through an f64 window at addr.
func (b *Bridge) storeF64s(addr uint32, vs ...float64) {
	arr, err := b.view.F64Array(addr, uint32(len(vs)))
	if err != nil {
		panic(err)
	}
	arr.Assign(vs)
}
