package collator

import "errors"

// Binding is the process-scoped pair of a resolved provider and its handle.
// Each process opens its own Binding after it starts; bindings are never shared.
type Binding struct {
	Provider Provider
	Handle   Handle
}

// Close destroys the handle, then the provider if it holds resources.
func (b *Binding) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	if b.Handle != nil {
		errs = append(errs, b.Handle.Close())
	}
	if d, ok := b.Provider.(Destroyer); ok {
		errs = append(errs, d.Destroy())
	}
	return errors.Join(errs...)
}
