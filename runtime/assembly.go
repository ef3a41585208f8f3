package runtime

import (
	"sync/atomic"

	"github.com/wireflow/wireflow/assembly"
)

// RefAssembly is an atomically reference-counted compiled assembly.
// Multiple instances can share one loaded assembly (spec.md §5
// "Assemblies are reference-counted and shared across instances").
// Release only decrements the count; dropping the last reference
// frees nothing itself, and the backing bytes are reclaimed by the
// garbage collector once nothing refers to them.
type RefAssembly struct {
	asm  *assembly.Assembly
	refs int32
}

// LoadAssembly validates buf and wraps it in a RefAssembly with one
// reference already held by the caller.
func LoadAssembly(buf []byte) (*RefAssembly, error) {
	a, err := assembly.Load(buf)
	if err != nil {
		return nil, err
	}
	return &RefAssembly{asm: a, refs: 1}, nil
}

// Retain increments the reference count and returns r, for callers
// that hand the same assembly to more than one instance.
func (r *RefAssembly) Retain() *RefAssembly {
	atomic.AddInt32(&r.refs, 1)
	return r
}

// Release decrements the reference count. It panics on a release
// past zero, the same double-free-style bug a C++ refcount would
// catch via an assertion.
func (r *RefAssembly) Release() {
	if atomic.AddInt32(&r.refs, -1) < 0 {
		panic("runtime: RefAssembly released more times than retained")
	}
}

func (r *RefAssembly) refCount() int32 { return atomic.LoadInt32(&r.refs) }
