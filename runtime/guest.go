package runtime

import (
	"context"
	"os"
	"slices"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/config"
	"github.com/wippyai/wasm-dom/errors"
)

// guest is a loaded guest module and the exports the runtime drives.
// It implements host.GuestInvoker.
type guest struct {
	mod      api.Module
	logger   *zap.Logger
	exports  config.GuestConfig
	context  api.Function
	start    api.Function
	step     api.Function
	end      api.Function
	callback []api.Function // indexed by nesting depth
	depth    int
}

func newGuest(mod api.Module, cfg config.GuestConfig, logger *zap.Logger) (*guest, error) {
	if mod.Memory() == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", "memory")
	}
	cb := mod.ExportedFunction(cfg.CallbackExport)
	if cb == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", cfg.CallbackExport)
	}
	if err := checkSignature(cfg.CallbackExport, cb, i32s(3), nil); err != nil {
		return nil, err
	}

	g := &guest{
		mod:      mod,
		logger:   logger,
		exports:  cfg,
		callback: []api.Function{cb},
		context:  optional(mod, cfg.ContextExport),
		start:    optional(mod, cfg.StartExport),
		step:     optional(mod, cfg.StepExport),
		end:      optional(mod, cfg.EndExport),
	}
	if g.context != nil {
		if err := checkSignature(cfg.ContextExport, g.context, nil, i32s(1)); err != nil {
			return nil, err
		}
	}
	if g.step != nil {
		if err := checkSignature(cfg.StepExport, g.step, []api.ValueType{api.ValueTypeF64}, i32s(1), nil); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// InvokeEventCallback calls the event trampoline with the guest's current
// context pointer. A callback that dispatches another event re-enters here
// and gets its own function instance for that depth.
func (g *guest) InvokeEventCallback(ctx context.Context, data, callback uint32) error {
	var ctxPtr uint64
	if g.context != nil {
		res, err := g.context.Call(ctx)
		if err != nil {
			return errors.GuestTrap(g.exports.ContextExport, err)
		}
		ctxPtr = res[0]
	}

	fn := g.fn(g.depth)
	g.depth++
	defer func() { g.depth-- }()

	if _, err := fn.Call(ctx, uint64(data), uint64(callback), ctxPtr); err != nil {
		return errors.GuestTrap(g.exports.CallbackExport, err)
	}
	return nil
}

func (g *guest) fn(depth int) api.Function {
	for len(g.callback) <= depth {
		g.logger.Debug("nested event callback", zap.Int("depth", len(g.callback)))
		g.callback = append(g.callback, g.mod.ExportedFunction(g.exports.CallbackExport))
	}
	return g.callback[depth]
}

// optional returns the export called name, nil if name is empty or the
// guest does not export it.
func optional(mod api.Module, name string) api.Function {
	if name == "" {
		return nil
	}
	return mod.ExportedFunction(name)
}

// checkSignature verifies fn takes params and returns one of the accepted
// result lists.
func checkSignature(name string, fn api.Function, params []api.ValueType, results ...[]api.ValueType) error {
	def := fn.Definition()
	if slices.Equal(def.ParamTypes(), params) &&
		slices.ContainsFunc(results, func(r []api.ValueType) bool { return slices.Equal(def.ResultTypes(), r) }) {
		return nil
	}
	return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		Path(name).
		Detail("export %s has signature %v -> %v, want %v -> %v",
			name, names(def.ParamTypes()), names(def.ResultTypes()), names(params), names(results[0])).
		Build()
}

func i32s(n int) []api.ValueType {
	return slices.Repeat([]api.ValueType{api.ValueTypeI32}, n)
}

func names(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read guest binary")
	}
	return data, nil
}
