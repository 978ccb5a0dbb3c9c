package runtime

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/config"
	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/host"
)

// Option customizes a Runtime.
type Option func(*options)

type options struct {
	sink host.Sink
	rand io.Reader
	now  func() time.Time
}

// WithSink receives every line the guest writes to stdout or stderr.
func WithSink(s host.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithRand sets the source of odin_env.rand_bytes.
func WithRand(r io.Reader) Option {
	return func(o *options) { o.rand = r }
}

// WithClock sets the wall clock of odin_env.time_now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Runtime runs one guest against a document. All methods are safe for
// concurrent use; calls into the guest are serialized.
type Runtime struct {
	mu      sync.Mutex
	cfg     *config.Config
	logger  *zap.Logger
	runtime wazero.Runtime
	bridge  *host.Bridge
	guest   *guest

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// New creates a wazero runtime with the odin_env and odin_dom host modules
// serving doc. A nil cfg uses the defaults.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, doc *dom.Document, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	bridge, err := host.NewBridge(doc, host.Options{
		Logger: logger,
		Sink:   o.sink,
		Rand:   o.rand,
		Now:    o.now,
		Width:  cfg.NativeWidth(),
	})
	if err != nil {
		return nil, err
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.Memory.LimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.Memory.LimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	if err := bridge.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	return &Runtime{
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "runtime")),
		runtime: r,
		bridge:  bridge,
	}, nil
}

// Load compiles and instantiates the guest, binds its memory and calls the
// start export if there is one. A runtime holds at most one guest.
func (r *Runtime) Load(ctx context.Context, wasm []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.NotInitialized(errors.PhaseLoad, "runtime")
	}
	if r.guest != nil {
		return errors.InvalidInput(errors.PhaseLoad, "guest already loaded")
	}

	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("compile guest").
			Cause(err).
			Build()
	}
	// start functions run below, once the bridge can reach the guest
	mod, err := r.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("guest").WithStartFunctions())
	if err != nil {
		return errors.Instantiation(err)
	}

	g, err := newGuest(mod, r.cfg.Guest, r.logger)
	if err != nil {
		_ = mod.Close(ctx)
		return err
	}
	if err := r.bridge.View().BindMemory(mod.Memory()); err != nil {
		_ = mod.Close(ctx)
		return err
	}
	r.bridge.SetInvoker(g)
	r.guest = g

	r.logger.Info("guest loaded",
		zap.Int("width", int(r.bridge.Width())),
		zap.Uint32("memory_bytes", mod.Memory().Size()),
		zap.Bool("step", g.step != nil))

	if g.start != nil {
		if _, err := g.start.Call(ctx); err != nil {
			return errors.GuestTrap(r.cfg.Guest.StartExport, err)
		}
	}
	return nil
}

// LoadFile reads the guest binary at path and loads it.
func (r *Runtime) LoadFile(ctx context.Context, path string) error {
	wasm, err := readFile(path)
	if err != nil {
		return err
	}
	return r.Load(ctx, wasm)
}

// Dispatch sends ev to the element with targetID, or to the window or
// document for their reserved ids. The bool is false if a listener
// canceled the event.
func (r *Runtime) Dispatch(ctx context.Context, targetID string, ev *event.Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, errors.NotInitialized(errors.PhaseDispatch, "runtime")
	}
	t, ok := r.bridge.Document().Lookup(targetID)
	if !ok {
		return false, errors.NotFound(errors.PhaseDispatch, "event target", targetID)
	}
	return r.bridge.Fire(ctx, t, ev)
}

// Update runs fn with the document while no event is being dispatched.
func (r *Runtime) Update(fn func(doc *dom.Document)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.bridge.Document())
}

// Step calls the guest's step export with the elapsed milliseconds. The
// bool reports whether the guest wants further frames; a guest without a
// step export never does.
func (r *Runtime) Step(ctx context.Context, dt float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.guest == nil {
		return false, errors.NotInitialized(errors.PhaseRuntime, "guest")
	}
	if r.guest.step == nil {
		return false, nil
	}
	res, err := r.guest.step.Call(ctx, api.EncodeF64(dt))
	if err != nil {
		return false, errors.GuestTrap(r.cfg.Guest.StepExport, err)
	}
	return len(res) == 0 || api.DecodeI32(res[0]) != 0, nil
}

// Call invokes any guest export with raw wasm values.
func (r *Runtime) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.guest == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "guest")
	}
	fn := r.guest.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	if want := len(fn.Definition().ParamTypes()); want != len(params) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Path(name).
			Value(len(params)).
			Detail("%s takes %d params, got %d", name, want, len(params)).
			Build()
	}
	res, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.GuestTrap(name, err)
	}
	return res, nil
}

// Bridge returns the host bridge.
func (r *Runtime) Bridge() *host.Bridge { return r.bridge }

// Document returns the document the guest runs against.
func (r *Runtime) Document() *dom.Document { return r.bridge.Document() }

// Config returns the runtime configuration.
func (r *Runtime) Config() *config.Config { return r.cfg }

// Loaded reports whether a guest is loaded.
func (r *Runtime) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.guest != nil
}

// Close calls the guest's end export if there is one, detaches the guest's
// listeners and releases the wazero runtime. Close is idempotent.
func (r *Runtime) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		var errs []error
		if r.guest != nil && r.guest.end != nil {
			if _, err := r.guest.end.Call(ctx); err != nil {
				r.logger.Warn("guest end export failed", zap.Error(err))
				errs = append(errs, errors.GuestTrap(r.cfg.Guest.EndExport, err))
			}
		}
		r.bridge.Close()
		if err := r.runtime.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		r.closed = true
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}
