package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// ModuleBuilder collects the functions of one host module.
type ModuleBuilder struct {
	name  string
	funcs []hostFunc
}

func newModuleBuilder(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

// Name returns the import namespace of the module.
func (b *ModuleBuilder) Name() string {
	return b.name
}

// Func adds a function to the host module builder.
func (b *ModuleBuilder) Func(name string, fn api.GoModuleFunc, params, results []api.ValueType) *ModuleBuilder {
	b.funcs = append(b.funcs, hostFunc{name: name, fn: fn, params: params, results: results})
	return b
}

// Exports returns the function names in definition order.
func (b *ModuleBuilder) Exports() []string {
	names := make([]string, len(b.funcs))
	for i, f := range b.funcs {
		names[i] = f.name
	}
	return names
}

// Instantiate instantiates the host module into r.
func (b *ModuleBuilder) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(b.name)
	for _, f := range b.funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			Export(f.name)
	}
	return builder.Instantiate(ctx)
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f64 = api.ValueTypeF64
)

func types(t ...api.ValueType) []api.ValueType { return t }
