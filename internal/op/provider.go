package op

import (
	"github.com/google/uuid"

	"github.com/vk/kord/internal/coord"
)

// Direction selects between forward and inverse application of an
// operator. It is passed at call time, never stored in the Op.
type Direction int

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "inverse"
}

// Handle is the opaque key identifying an instantiated operator held by a
// Provider, decoupling construction from application.
type Handle struct {
	id uuid.UUID
}

// NewHandle mints a fresh, globally unique handle.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

func (h Handle) String() string { return h.id.String() }

// Grid is a regular raster of correction values, addressed row-major from
// the north-west corner. The construction and execution engine never
// interprets grids; providers load them and individual operators consume
// them.
type Grid struct {
	Name       string
	Lat0, Lat1 float64
	Lon0, Lon1 float64
	DLat, DLon float64
	Rows, Cols int
	Bands      int
	Values     []float64
}

// Provider is the external collaborator supplying registries and resources
// to the engine. Construction (Op, RegisterOp, RegisterResource) mutates
// the provider and needs exclusive access; application and the lookups only
// read it.
type Provider interface {
	// Globals returns the provider-level parameter defaults, visible to
	// every instantiation as the outermost scope.
	Globals() map[string]string

	// RegisterOp and GetOp handle user defined operator constructors.
	RegisterOp(name string, constructor Constructor)
	GetOp(name string) (Constructor, error)

	// RegisterResource and GetResource handle macros: named textual
	// definitions expanded at instantiation time.
	RegisterResource(name, definition string) error
	GetResource(name string) (string, error)

	// GetBlob and GetGrid give operators access to external assets.
	GetBlob(name string) ([]byte, error)
	GetGrid(name string) (*Grid, error)

	// Op instantiates a definition and stores the result under a fresh
	// handle. Apply runs a stored operator against a coordinate batch and
	// reports the number of points transformed cleanly.
	Op(definition string) (Handle, error)
	Apply(h Handle, d Direction, operands coord.Set) (int, error)

	// Steps and Params expose the structure of a stored operator for
	// introspection.
	Steps(h Handle) ([]string, error)
	Params(h Handle, step int) (*ParsedParameters, error)
}
