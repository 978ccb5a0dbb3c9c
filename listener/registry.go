package listener

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/event"
)

// Key identifies a registration. Keys compare by value: the same element,
// event name and guest (data, callback) pair always names the same entry.
type Key struct {
	ElementID string
	Name      string
	Data      uint32
	Callback  uint32
	Window    bool
}

// Registration is everything the guest supplies when it adds a listener.
// IDPtr and IDLen point at the guest's copy of the element id and are
// echoed back in every record the listener produces.
type Registration struct {
	Key
	NameCode uint32
	IDPtr    uint32
	IDLen    uint64
	Capture  bool
}

// Target is an element or window host listeners attach to.
type Target interface {
	// Listen attaches fn for events of type typ and returns a function that
	// detaches it.
	Listen(typ string, capture bool, fn func(*event.Event)) (detach func())
}

// Resolver looks up listener targets.
type Resolver interface {
	ResolveElement(id string) (Target, bool)
	ResolveWindow() Target
}

// Dispatcher forwards a fired host listener to the guest.
type Dispatcher interface {
	Dispatch(p *event.Pending, data, callback uint32)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(p *event.Pending, data, callback uint32)

func (f DispatcherFunc) Dispatch(p *event.Pending, data, callback uint32) { f(p, data, callback) }

type entry struct {
	detach func()
	reg    Registration
}

// Registry maps guest listener keys to attached host listeners.
// Not safe for concurrent use.
type Registry struct {
	resolver   Resolver
	dispatcher Dispatcher
	logger     *zap.Logger
	entries    map[Key]*entry
}

// New creates a registry. A nil logger falls back to the package logger.
func New(resolver Resolver, dispatcher Dispatcher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = Logger()
	}
	return &Registry{
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("component", "listener")),
		entries:    make(map[Key]*entry),
	}
}

// Add attaches a listener to the element named by reg.ElementID.
// Returns false, registering nothing, if the element does not resolve.
func (r *Registry) Add(reg Registration) bool {
	reg.Window = false
	t, ok := r.resolver.ResolveElement(reg.ElementID)
	if !ok {
		r.logger.Debug("add listener: element not found",
			zap.String("element", reg.ElementID),
			zap.String("event", reg.Name))
		return false
	}
	r.attach(t, reg)
	return true
}

// AddWindow attaches a listener to the window. Window listeners carry no
// element id.
func (r *Registry) AddWindow(reg Registration) bool {
	reg.Window = true
	reg.ElementID = ""
	reg.IDPtr = 0
	reg.IDLen = 0
	r.attach(r.resolver.ResolveWindow(), reg)
	return true
}

// Remove detaches the element listener registered under key. Returns false
// if the element does not resolve or nothing is registered under key.
func (r *Registry) Remove(key Key) bool {
	key.Window = false
	if _, ok := r.resolver.ResolveElement(key.ElementID); !ok {
		return false
	}
	return r.remove(key)
}

// RemoveWindow detaches the window listener registered for name and the
// (data, callback) pair.
func (r *Registry) RemoveWindow(name string, data, callback uint32) bool {
	return r.remove(Key{Name: name, Data: data, Callback: callback, Window: true})
}

// Lookup returns the registration stored under key.
func (r *Registry) Lookup(key Key) (Registration, bool) {
	e, ok := r.entries[key]
	if !ok {
		return Registration{}, false
	}
	return e.reg, true
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clear detaches every listener.
func (r *Registry) Clear() {
	for k, e := range r.entries {
		e.detach()
		delete(r.entries, k)
	}
}

func (r *Registry) attach(t Target, reg Registration) {
	if old, ok := r.entries[reg.Key]; ok {
		old.detach()
		r.logger.Warn("listener re-added under an existing key; previous listener detached",
			zap.String("element", reg.ElementID),
			zap.String("event", reg.Name),
			zap.Uint32("data", reg.Data),
			zap.Uint32("callback", reg.Callback))
	}

	fire := func(ev *event.Event) {
		r.dispatcher.Dispatch(&event.Pending{
			Event:    ev,
			NameCode: reg.NameCode,
			IDPtr:    reg.IDPtr,
			IDLen:    reg.IDLen,
		}, reg.Data, reg.Callback)
	}
	r.entries[reg.Key] = &entry{
		reg:    reg,
		detach: t.Listen(reg.Name, reg.Capture, fire),
	}
}

func (r *Registry) remove(key Key) bool {
	e, ok := r.entries[key]
	if !ok {
		return false
	}
	e.detach()
	delete(r.entries, key)
	return true
}
