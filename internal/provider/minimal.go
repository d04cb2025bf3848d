// Package provider implements the op.Provider contract: the execution
// contexts through which operators are instantiated and applied.
package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/op"
	"github.com/vk/kord/internal/token"
)

// Minimal is a minimalistic provider, supporting only built in and run-time
// defined operators and macros. Usually sufficient for cartographic uses,
// and for test authoring.
//
// Construction methods (Op, RegisterOp, RegisterResource) take the write
// lock; application and introspection are safe for concurrent use.
type Minimal struct {
	mu           sync.RWMutex
	constructors map[string]op.Constructor
	resources    map[string]string
	operators    map[op.Handle]*op.Op
}

// NewMinimal returns a Minimal provider with the built in adaptor macros
// (geo:in, gis:out etc.) preregistered.
func NewMinimal() *Minimal {
	p := &Minimal{
		constructors: map[string]op.Constructor{},
		resources:    map[string]string{},
		operators:    map[op.Handle]*op.Op{},
	}
	for name, definition := range op.BuiltinAdaptors() {
		p.resources[name] = definition
	}
	return p
}

// Globals returns the provider-level defaults seen by every instantiation.
func (p *Minimal) Globals() map[string]string {
	return map[string]string{"ellps": "GRS80"}
}

// Op instantiates the operator given by definition and returns a handle
// for later application.
func (p *Minimal) Op(definition string) (op.Handle, error) {
	// Instantiation calls back into GetOp and GetResource, so the lock is
	// only taken for the final insertion.
	o, err := op.New(definition, p)
	if err != nil {
		return op.Handle{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.operators[o.ID] = o
	return o.ID, nil
}

// Apply runs the operator behind the handle on the operands, in the given
// direction, and returns the number of coordinates successfully
// transformed.
func (p *Minimal) Apply(h op.Handle, direction op.Direction, operands coord.Set) (int, error) {
	return p.applyAs(p, h, direction, operands)
}

// applyAs runs the operator with prv as the Provider seen by the operator
// functions. Embedding providers pass themselves, so apply-time resource
// lookups resolve against the outermost provider rather than this one.
func (p *Minimal) applyAs(prv op.Provider, h op.Handle, direction op.Direction, operands coord.Set) (int, error) {
	p.mu.RLock()
	o, ok := p.operators[h]
	p.mu.RUnlock()
	if !ok {
		return 0, op.NewError(op.ErrGeneral, "unknown operator handle", "")
	}
	return o.Apply(prv, operands, direction), nil
}

// Steps returns the step texts of the operator behind the handle. Leaf
// operators have none.
func (p *Minimal) Steps(h op.Handle) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	o, ok := p.operators[h]
	if !ok {
		return nil, op.NewError(op.ErrGeneral, "unknown operator handle", "")
	}
	return o.Descriptor.Steps, nil
}

// Params gives access to the parsed parameters of a given step of the
// operator behind the handle. For a leaf operator only step 0 exists.
func (p *Minimal) Params(h op.Handle, step int) (*op.ParsedParameters, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	o, ok := p.operators[h]
	if !ok {
		return nil, op.NewError(op.ErrGeneral, "unknown operator handle", "")
	}

	// Leaf level?
	if len(o.Steps) == 0 {
		if step > 0 {
			return nil, op.NewError(op.ErrGeneral, "bad step index", fmt.Sprint(step))
		}
		return o.Params, nil
	}

	if step >= len(o.Steps) {
		return nil, op.NewError(op.ErrGeneral, "bad step index", fmt.Sprint(step))
	}
	return o.Steps[step].Params, nil
}

// RegisterOp makes a user defined operator constructor available under the
// given name, shadowing any builtin of the same name.
func (p *Minimal) RegisterOp(name string, constructor op.Constructor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.constructors[name] = constructor
}

// GetOp looks up a user defined operator constructor.
func (p *Minimal) GetOp(name string) (op.Constructor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if constructor, ok := p.constructors[name]; ok {
		return constructor, nil
	}
	return nil, op.NewError(op.ErrNotFound, name, "user defined constructor")
}

// RegisterResource registers a macro definition. A macro that invokes
// itself directly would expand forever, so it is rejected up front.
func (p *Minimal) RegisterResource(name, definition string) error {
	if token.OperatorName(token.Normalize(definition), "") == name {
		return op.NewError(op.ErrRecursion, name, definition)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources[name] = definition
	return nil
}

// GetResource looks up a macro definition.
func (p *Minimal) GetResource(name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if definition, ok := p.resources[name]; ok {
		return definition, nil
	}
	return "", op.NewError(op.ErrNotFound, name, "user defined resource")
}

// GetBlob reads a binary asset from the conventional location
// ./geodesy/<extension>/<name>.
func (p *Minimal) GetBlob(name string) ([]byte, error) {
	ext := filepath.Ext(name)
	if ext != "" {
		ext = ext[1:]
	}
	return os.ReadFile(filepath.Join(".", "geodesy", ext, name))
}

// GetGrid is unsupported by the Minimal provider.
func (p *Minimal) GetGrid(name string) (*op.Grid, error) {
	return nil, op.NewError(op.ErrUnsupported, name, "grid access requires the Plain provider")
}
