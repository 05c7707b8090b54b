package catalog

// Validatable is anything whose backing host object can die between calls
type Validatable interface {
	Alive() bool
}

// Handle is a weak reference to a host-owned object. The host owns the
// object's lifetime; holders must check IsValid before every dereference
// and must never assume the object outlives the holder's own bookkeeping.
type Handle[T Validatable] struct {
	ref T
	set bool
}

// NewHandle wraps a host-owned object in a weak handle
func NewHandle[T Validatable](ref T) Handle[T] {
	return Handle[T]{ref: ref, set: true}
}

// IsValid reports whether the backing object still exists
func (h Handle[T]) IsValid() bool {
	return h.set && h.ref.Alive()
}

// Get returns the backing object if it is still valid
func (h Handle[T]) Get() (T, bool) {
	if !h.IsValid() {
		var zero T
		return zero, false
	}
	return h.ref, true
}
