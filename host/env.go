package host

import (
	"context"
	"io"
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/errors"
)

// EnvModule returns the odin_env host module: console output, traps,
// clocks, math intrinsics and random bytes.
func (b *Bridge) EnvModule() *ModuleBuilder {
	intT := b.intType()
	m := newModuleBuilder(EnvModule)

	m.Func("write", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		fd := Stream(api.DecodeU32(stack[0]))
		s := b.str(stack, 1)
		if err := b.console.Write(fd, s); err != nil {
			panic(err)
		}
	}, types(i32, i32, intT), nil)

	m.Func("trap", func(context.Context, api.Module, []uint64) {
		panic(errors.New(errors.PhaseHost, errors.KindGuestTrap).
			Path(EnvModule, "trap").
			Detail("guest trap").
			Build())
	}, nil, nil)

	m.Func("abort", func(context.Context, api.Module, []uint64) {
		b.console.Flush()
		panic(errors.New(errors.PhaseHost, errors.KindGuestTrap).
			Path(EnvModule, "abort").
			Detail("guest aborted").
			Build())
	}, nil, nil)

	m.Func("alert", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		b.logger.Warn("alert", zap.String("message", b.str(stack, 0)))
	}, types(i32, intT), nil)

	m.Func("evaluate", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		b.logger.Warn("evaluate is not supported by a headless host; script ignored",
			zap.String("script", b.str(stack, 0)))
	}, types(i32, intT), nil)

	m.Func("time_now", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = api.EncodeI64(b.now().UnixMilli())
	}, nil, types(i64))

	m.Func("tick_now", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = api.EncodeF64(b.doc.Now())
	}, nil, types(f64))

	// The host never blocks the guest.
	m.Func("time_sleep", func(_ context.Context, _ api.Module, stack []uint64) {
		b.logger.Debug("time_sleep ignored", zap.Uint32("ms", api.DecodeU32(stack[0])))
	}, types(i32), nil)

	unary := func(name string, fn func(float64) float64) {
		m.Func(name, func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeF64(fn(api.DecodeF64(stack[0])))
		}, types(f64), types(f64))
	}
	unary("sqrt", math.Sqrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("ln", math.Log)
	unary("exp", math.Exp)

	m.Func("pow", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = api.EncodeF64(math.Pow(api.DecodeF64(stack[0]), api.DecodeF64(stack[1])))
	}, types(f64, f64), types(f64))

	m.Func("fmuladd", func(_ context.Context, _ api.Module, stack []uint64) {
		x, y, z := api.DecodeF64(stack[0]), api.DecodeF64(stack[1]), api.DecodeF64(stack[2])
		stack[0] = api.EncodeF64(x*y + z)
	}, types(f64, f64, f64), types(f64))

	m.Func("ldexp", func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = api.EncodeF64(math.Ldexp(api.DecodeF64(stack[0]), int(api.DecodeI32(stack[1]))))
	}, types(f64, i32), types(f64))

	m.Func("rand_bytes", func(_ context.Context, mod api.Module, stack []uint64) {
		b.bind(mod)
		buf, err := b.view.Bytes(api.DecodeU32(stack[0]), b.length(stack[1]))
		if err != nil {
			panic(err)
		}
		if _, err := io.ReadFull(b.rand, buf); err != nil {
			panic(errors.Wrap(errors.PhaseHost, errors.KindUnsupported, err, "read random bytes"))
		}
	}, types(i32, intT), nil)

	return m
}
