package scan

import (
	"errors"
	"fmt"
)

// Handle is the concrete, loaded representation of a type, obtained on
// demand from a Loader. The scan package treats handles as opaque.
type Handle interface {
	// TypeName returns the canonical name of the loaded type.
	TypeName() string
}

// Loader resolves canonical type names to runtime type handles. Loading
// can fail for missing, incompatible or otherwise unloadable types; the
// error carries the cause.
type Loader interface {
	Load(typeName string) (Handle, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(typeName string) (Handle, error)

// Load calls the underlying function.
func (f LoaderFunc) Load(typeName string) (Handle, error) { return f(typeName) }

// ErrNoLoader is the cause reported when a load is attempted on a scan
// result that has no loader configured.
var ErrNoLoader = errors.New("no type loader configured")

// ErrUnboundSignature is the cause reported when a load is attempted
// through a signature that is not attached to a scan result.
var ErrUnboundSignature = errors.New("signature not bound to a scan result")

// LoadError reports a failed runtime type resolution. It carries the name
// of the unresolvable type and wraps the underlying cause.
type LoadError struct {
	TypeName string
	Err      error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load type %q: %v", e.TypeName, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// loadFailure applies the caller-selected failure policy: with
// ignoreFailures the condition silently yields a nil handle, otherwise it
// is surfaced as a *LoadError.
func loadFailure(typeName string, cause error, ignoreFailures bool) (Handle, error) {
	if ignoreFailures {
		return nil, nil
	}
	return nil, &LoadError{TypeName: typeName, Err: cause}
}
