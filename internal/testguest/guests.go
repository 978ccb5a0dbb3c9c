package testguest

// Addresses used by the DOM guest.
const (
	AddClickResult     = 0
	AddScrollResult    = 4
	AddCustomResult    = 8
	RemoveClickResult  = 12
	RemoveScrollResult = 16
	ValueResult        = 24 // f64
	StepResult         = 40 // f64
	EndResult          = 48

	CanvasID  = 64
	ClickStr  = 80
	ScrollStr = 96
	CustomStr = 112
	HelloStr  = 128

	ClickRecord  = 1024
	ScrollRecord = 2048
	CustomRecord = 3072
)

// Event name codes the DOM guest registers with.
const (
	ClickCode  = 1
	ScrollCode = 2
	CustomCode = 3
)

// Callback values understood by the DOM guest's event callback.
const (
	Encode          = 1 // encode the record at data
	PreventDefault  = 2 // prevent default, then encode
	DispatchCustom  = 3 // dispatch "custom" on canvas, then encode
	StopPropagation = 4 // stop propagation, then encode
)

// DOM returns a guest for the given native width that exercises the
// odin_dom and odin_env imports.
//
// Exports:
//
//	memory
//	odin_dom_do_event_callback(data, callback, ctx)
//	default_context_ptr() i32
//	setup(callback)   add click on #canvas (record at ClickRecord), scroll on
//	                  the window, custom on #canvas; results at Add*Result
//	teardown(callback) remove the click listener added by setup(callback)
//	                  and the scroll listener
//	hello()           write "hello\n" to fd 1
//	read_value()      store get_element_value_f64("canvas") at ValueResult
//	init_event(addr)  call init_event_raw(addr) directly
//	_start()          setup(Encode)
//	step(dt f64) i32  store dt at StepResult, return 1
//	_end()            store 1 at EndResult
func DOM(width uint32) []byte {
	intT := I32
	if width == 8 {
		intT = I64
	}
	m := NewModule()

	initEvent := m.Import("odin_dom", "init_event_raw", FuncType{Params: []ValType{I32}})
	addListener := m.Import("odin_dom", "add_event_listener", FuncType{
		Params:  []ValType{I32, intT, I32, intT, I32, I32, I32, I32},
		Results: []ValType{I32},
	})
	removeListener := m.Import("odin_dom", "remove_event_listener", FuncType{
		Params:  []ValType{I32, intT, I32, intT, I32, I32},
		Results: []ValType{I32},
	})
	addWindow := m.Import("odin_dom", "add_window_event_listener", FuncType{
		Params:  []ValType{I32, intT, I32, I32, I32, I32},
		Results: []ValType{I32},
	})
	removeWindow := m.Import("odin_dom", "remove_window_event_listener", FuncType{
		Params:  []ValType{I32, intT, I32, I32},
		Results: []ValType{I32},
	})
	preventDefault := m.Import("odin_dom", "event_prevent_default", FuncType{})
	stopPropagation := m.Import("odin_dom", "event_stop_propagation", FuncType{})
	dispatchCustom := m.Import("odin_dom", "dispatch_custom_event", FuncType{
		Params:  []ValType{I32, intT, I32, intT, I32},
		Results: []ValType{I32},
	})
	valueF64 := m.Import("odin_dom", "get_element_value_f64", FuncType{
		Params:  []ValType{I32, intT},
		Results: []ValType{F64},
	})
	write := m.Import("odin_env", "write", FuncType{Params: []ValType{I32, I32, intT}})

	m.Memory(1)
	m.Data(CanvasID, []byte("canvas"))
	m.Data(ClickStr, []byte("click"))
	m.Data(ScrollStr, []byte("scroll"))
	m.Data(CustomStr, []byte("custom"))
	m.Data(HelloStr, []byte("hello\n"))

	w := width
	callback := new(Code).
		LocalGet(1).I32(PreventDefault).I32Eq().If().Call(preventDefault).End().
		LocalGet(1).I32(StopPropagation).I32Eq().If().Call(stopPropagation).End().
		LocalGet(1).I32(DispatchCustom).I32Eq().If().
		I32(CanvasID).Int(w, 6).I32(CustomStr).Int(w, 6).I32(1).Call(dispatchCustom).Drop().
		End().
		LocalGet(0).Call(initEvent)
	m.Export("odin_dom_do_event_callback", m.Func(FuncType{Params: []ValType{I32, I32, I32}}, callback.Bytes()))

	m.Export("default_context_ptr", m.Func(FuncType{Results: []ValType{I32}}, new(Code).I32(0).Bytes()))

	setup := new(Code).
		I32(AddClickResult).
		I32(CanvasID).Int(w, 6).I32(ClickStr).Int(w, 5).I32(ClickCode).I32(ClickRecord).LocalGet(0).I32(0).
		Call(addListener).I32Store(0).
		I32(AddScrollResult).
		I32(ScrollStr).Int(w, 6).I32(ScrollCode).I32(ScrollRecord).I32(Encode).I32(0).
		Call(addWindow).I32Store(0).
		I32(AddCustomResult).
		I32(CanvasID).Int(w, 6).I32(CustomStr).Int(w, 6).I32(CustomCode).I32(CustomRecord).I32(Encode).I32(0).
		Call(addListener).I32Store(0)
	setupFn := m.Func(FuncType{Params: []ValType{I32}}, setup.Bytes())
	m.Export("setup", setupFn)

	teardown := new(Code).
		I32(RemoveClickResult).
		I32(CanvasID).Int(w, 6).I32(ClickStr).Int(w, 5).I32(ClickRecord).LocalGet(0).
		Call(removeListener).I32Store(0).
		I32(RemoveScrollResult).
		I32(ScrollStr).Int(w, 6).I32(ScrollRecord).I32(Encode).
		Call(removeWindow).I32Store(0)
	m.Export("teardown", m.Func(FuncType{Params: []ValType{I32}}, teardown.Bytes()))

	hello := new(Code).I32(1).I32(HelloStr).Int(w, 6).Call(write)
	m.Export("hello", m.Func(FuncType{}, hello.Bytes()))

	readValue := new(Code).I32(ValueResult).I32(CanvasID).Int(w, 6).Call(valueF64).F64Store(0)
	m.Export("read_value", m.Func(FuncType{}, readValue.Bytes()))

	initAt := new(Code).LocalGet(0).Call(initEvent)
	m.Export("init_event", m.Func(FuncType{Params: []ValType{I32}}, initAt.Bytes()))

	m.Export("_start", m.Func(FuncType{}, new(Code).I32(Encode).Call(setupFn).Bytes()))

	step := new(Code).I32(StepResult).LocalGet(0).F64Store(0).I32(1)
	m.Export("step", m.Func(FuncType{Params: []ValType{F64}, Results: []ValType{I32}}, step.Bytes()))

	m.Export("_end", m.Func(FuncType{}, new(Code).I32(EndResult).I32(1).I32Store(0).Bytes()))

	return m.Bytes()
}
