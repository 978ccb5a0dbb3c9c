package host

import (
	"context"
	"crypto/rand"
	"io"
	"math"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmdom "github.com/wippyai/wasm-dom"
	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/listener"
	"github.com/wippyai/wasm-dom/memory"
)

// Import namespaces served by the bridge.
const (
	EnvModule = "odin_env"
	DOMModule = "odin_dom"
)

// GuestInvoker calls back into the guest.
type GuestInvoker interface {
	// InvokeEventCallback runs the guest's event trampoline for a
	// registered (data, callback) pair.
	InvokeEventCallback(ctx context.Context, data, callback uint32) error
}

// Options configures a Bridge.
type Options struct {
	Logger *zap.Logger
	Sink   Sink
	Rand   io.Reader
	Now    func() time.Time
	Width  wasmdom.Width
}

// Bridge connects a guest to a document: it serves the odin_env and
// odin_dom imports, keeps the listener registry and the stack of events
// being dispatched, and encodes event records into guest memory.
//
// Not safe for concurrent use.
type Bridge struct {
	ctx      context.Context
	view     *memory.View
	encoder  *event.Encoder
	doc      *dom.Document
	registry *listener.Registry
	invoker  GuestInvoker
	console  *Console
	logger   *zap.Logger
	rand     io.Reader
	now      func() time.Time
	pending  []*event.Pending
	errs     []error
	firing   bool
	width    wasmdom.Width
}

// NewBridge creates a bridge serving doc.
func NewBridge(doc *dom.Document, opts Options) (*Bridge, error) {
	if doc == nil {
		return nil, errors.InvalidInput(errors.PhaseConfigure, "document cannot be nil")
	}
	view, err := memory.New(opts.Width)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	b := &Bridge{
		ctx:     context.Background(),
		view:    view,
		encoder: event.NewEncoder(view, doc),
		doc:     doc,
		console: NewConsole(log, opts.Sink),
		logger:  log.With(zap.String("component", "bridge")),
		rand:    opts.Rand,
		now:     opts.Now,
		width:   opts.Width,
	}
	if b.rand == nil {
		b.rand = rand.Reader
	}
	if b.now == nil {
		b.now = time.Now
	}
	b.registry = listener.New(doc, b, log)
	return b, nil
}

// SetInvoker sets the guest callback target. Events dispatched before an
// invoker is set are not forwarded to the guest.
func (b *Bridge) SetInvoker(inv GuestInvoker) { b.invoker = inv }

// View returns the bridge's memory view.
func (b *Bridge) View() *memory.View { return b.view }

// Document returns the served document.
func (b *Bridge) Document() *dom.Document { return b.doc }

// Registry returns the guest listener registry.
func (b *Bridge) Registry() *listener.Registry { return b.registry }

// Console returns the guest console.
func (b *Bridge) Console() *Console { return b.console }

// Width returns the guest's native integer width.
func (b *Bridge) Width() wasmdom.Width { return b.width }

// Pending returns the event currently being dispatched to the guest, nil
// outside a dispatch.
func (b *Bridge) Pending() *event.Pending {
	if len(b.pending) == 0 {
		return nil
	}
	return b.pending[len(b.pending)-1]
}

// Encode writes the record of the pending event at base.
func (b *Bridge) Encode(base uint32) (uint32, error) {
	return b.encoder.Encode(base, b.Pending())
}

// Fire dispatches ev at t through the document. Guest listeners run
// synchronously; their failures are joined into the returned error. The
// bool is false if a listener canceled the event.
func (b *Bridge) Fire(ctx context.Context, t dom.EventTarget, ev *event.Event) (bool, error) {
	prevCtx, prevErrs, prevFiring := b.ctx, b.errs, b.firing
	b.ctx, b.errs, b.firing = ctx, nil, true
	defer func() { b.ctx, b.errs, b.firing = prevCtx, prevErrs, prevFiring }()

	ok := b.doc.Dispatch(t, ev)
	return ok, errors.Join(b.errs...)
}

// Dispatch implements listener.Dispatcher: it makes p the pending event and
// runs the guest callback. Nested dispatches restore the outer event when
// they return. Callback errors are returned by the enclosing Fire; outside
// Fire they are only logged.
func (b *Bridge) Dispatch(p *event.Pending, data, callback uint32) {
	if b.invoker == nil {
		b.logger.Warn("event dropped: no guest attached", zap.String("type", p.Event.Type))
		return
	}
	b.pending = append(b.pending, p)
	defer func() { b.pending = b.pending[:len(b.pending)-1] }()

	if err := b.invoker.InvokeEventCallback(b.ctx, data, callback); err != nil {
		b.logger.Error("guest event callback failed",
			zap.String("type", p.Event.Type),
			zap.Uint32("callback", callback),
			zap.Error(err))
		if b.firing {
			b.errs = append(b.errs, err)
		}
	}
}

// Instantiate instantiates the odin_env and odin_dom host modules into r.
func (b *Bridge) Instantiate(ctx context.Context, r wazero.Runtime) error {
	for _, m := range []*ModuleBuilder{b.EnvModule(), b.DOMModule()} {
		if _, err := m.Instantiate(ctx, r); err != nil {
			return errors.New(errors.PhaseHost, errors.KindInstantiation).
				Path(m.Name()).
				Detail("instantiate host module").
				Cause(err).
				Build()
		}
	}
	return nil
}

// Close flushes the console and detaches every guest listener.
func (b *Bridge) Close() {
	b.console.Flush()
	b.registry.Clear()
}

// bind points the view at the calling module's memory. Memory may have
// grown since the last host call.
func (b *Bridge) bind(mod api.Module) {
	if err := b.view.BindMemory(mod.Memory()); err != nil {
		panic(err)
	}
}

// intType is the wasm type of the guest's native int.
func (b *Bridge) intType() api.ValueType {
	if b.width == wasmdom.Width64 {
		return i64
	}
	return i32
}

func (b *Bridge) intArg(v uint64) int64 {
	if b.width == wasmdom.Width64 {
		return int64(v)
	}
	return int64(api.DecodeI32(v))
}

func (b *Bridge) intResult(n int64) uint64 {
	if b.width == wasmdom.Width64 {
		return api.EncodeI64(n)
	}
	return api.EncodeI32(int32(n))
}

// length converts a native int length argument, trapping on values no
// 32-bit address space can hold.
func (b *Bridge) length(v uint64) uint32 {
	n := b.intArg(v)
	if n < 0 || n > math.MaxUint32 {
		panic(errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(n).
			Detail("length %d out of range", n).
			Build())
	}
	return uint32(n)
}

// str reads the (ptr, len) string at stack[i], stack[i+1].
func (b *Bridge) str(stack []uint64, i int) string {
	s, err := b.view.String(api.DecodeU32(stack[i]), b.length(stack[i+1]))
	if err != nil {
		panic(err)
	}
	return s
}

// element resolves the id string at stack[i]; nil if no element has it.
func (b *Bridge) element(stack []uint64, i int) (*dom.Element, string) {
	id := b.str(stack, i)
	el, _ := b.doc.Element(id)
	return el, id
}

func boolResult(ok bool) uint64 {
	if ok {
		return 1
	}
	return 0
}
