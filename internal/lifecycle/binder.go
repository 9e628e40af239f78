package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/motifkit/motif/internal/page"
)

// Binding is what a module factory receives for one element.
type Binding struct {
	// Element is the bound element.
	Element *page.Element
	// Attrs is the element's data attribute map.
	Attrs map[string]string
	// Registry is where the binding registers its lifecycle callbacks.
	Registry *Registry
}

// Factory initializes a module instance for one element. A non-nil error
// leaves the element unbound so a later discovery pass can retry it.
type Factory func(b Binding) error

// UnknownModuleError reports a data-module value with no registered
// factory.
type UnknownModuleError struct {
	Module  string
	Element string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("no module registered for %q (element %s)", e.Module, e.Element)
}

// BindError reports a factory that failed while initializing an element.
type BindError struct {
	Module  string
	Element string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding module %q to element %s: %v", e.Module, e.Element, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Binder resolves data-module values to factories and tracks which elements
// have been initialized, guaranteeing at-most-once binding across repeated
// discovery passes.
type Binder struct {
	mu        sync.Mutex
	factories map[string]Factory
	bound     map[string]bool
}

// NewBinder creates an empty binder.
func NewBinder() *Binder {
	return &Binder{
		factories: make(map[string]Factory),
		bound:     make(map[string]bool),
	}
}

// RegisterModule adds a factory under the given module name. Registering a
// duplicate name is an error.
func (b *Binder) RegisterModule(name string, factory Factory) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.factories[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}
	b.factories[name] = factory
	return nil
}

// Modules returns the registered module names.
func (b *Binder) Modules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.factories))
	for name := range b.factories {
		names = append(names, name)
	}
	return names
}

// elementKey namespaces the initialized marker per document.
func elementKey(doc *page.Document, el *page.Element) string {
	return doc.Name + "\x00" + el.ID
}

// Bind initializes one element. The initialized marker is set only after
// the factory succeeds; a failing factory leaves the marker clear so the
// element can be retried.
func (b *Binder) Bind(doc *page.Document, el *page.Element, reg *Registry) error {
	key := elementKey(doc, el)

	b.mu.Lock()
	if b.bound[key] {
		b.mu.Unlock()
		return nil
	}
	factory, ok := b.factories[el.Module]
	b.mu.Unlock()

	if !ok {
		return &UnknownModuleError{Module: el.Module, Element: el.ID}
	}

	if err := bindSafely(factory, Binding{Element: el, Attrs: el.Attrs, Registry: reg}); err != nil {
		return &BindError{Module: el.Module, Element: el.ID, Err: err}
	}

	b.mu.Lock()
	b.bound[key] = true
	b.mu.Unlock()
	return nil
}

// bindSafely invokes the factory, converting a panic into an error.
func bindSafely(factory Factory, binding Binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()
	return factory(binding)
}

// Discover binds every module element of doc that is not yet initialized.
// Per-element failures are returned but never abort the pass; successfully
// bound elements stay bound.
func (b *Binder) Discover(ctx context.Context, doc *page.Document, reg *Registry) []error {
	var errs []error
	for _, el := range doc.Elements {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return errs
		}
		if err := b.Bind(doc, el, reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Forget clears the initialized markers for a document, used when a page
// file is re-scanned after an edit.
func (b *Binder) Forget(docName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prefix := docName + "\x00"
	for key := range b.bound {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(b.bound, key)
		}
	}
}
