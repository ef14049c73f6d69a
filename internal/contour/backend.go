package contour

import (
	"fmt"
	"sort"

	"github.com/ironsheep/blast-cropper/internal/stain"
)

// DefaultBackend is the pure Go border follower.
const DefaultBackend = "suzuki"

// Func extracts filtered contours from a mask.
type Func func(m *stain.Mask, mode Mode) []Contour

// backends is written only from package init functions.
var backends = map[string]Func{
	DefaultBackend: Extract,
}

// Register adds a named extraction backend. It is meant to be called from
// init and panics on duplicate names.
func Register(name string, fn Func) {
	if _, dup := backends[name]; dup {
		panic("contour: backend registered twice: " + name)
	}
	backends[name] = fn
}

// Lookup returns the backend registered under name. An empty name selects
// DefaultBackend.
func Lookup(name string) (Func, error) {
	if name == "" {
		name = DefaultBackend
	}
	fn, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown contour backend %q (available: %v)", name, Backends())
	}
	return fn, nil
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// filter applies the same degenerate-boundary rule as Extract to outlines
// produced by another backend.
func filter(outlines []Boundary) []Boundary {
	out := make([]Boundary, 0, len(outlines))
	for _, b := range outlines {
		if b.Distinct() < 3 || PolygonMoments(b).Degenerate() {
			continue
		}
		out = append(out, b)
	}
	return out
}
