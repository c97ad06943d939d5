package matrix

import (
	"fmt"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/ports"
)

// Center points used for the response-surface designs.
const (
	boxBehnkenCenter = 1
	ccdFactorialCtr  = 0
	ccdAxialCtr      = 3
)

// Registry resolves design kinds to providers.
type Registry struct {
	providers map[design.Kind]ports.DesignMatrixProvider
}

// NewRegistry returns a registry holding every built-in design.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[design.Kind]ports.DesignMatrixProvider)}
	for _, p := range []ports.DesignMatrixProvider{
		FullFactorial2{},
		FullFactorial3{},
		PlackettBurman{},
		BoxBehnken{Center: boxBehnkenCenter},
		CentralComposite{Face: design.CCC, FactorialCenter: ccdFactorialCtr, AxialCenter: ccdAxialCtr},
		CentralComposite{Face: design.CCF, FactorialCenter: ccdFactorialCtr, AxialCenter: ccdAxialCtr},
		CentralComposite{Face: design.CCI, FactorialCenter: ccdFactorialCtr, AxialCenter: ccdAxialCtr},
	} {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p ports.DesignMatrixProvider) {
	r.providers[p.Kind()] = p
}

// Provider returns the provider for kind.
func (r *Registry) Provider(kind design.Kind) (ports.DesignMatrixProvider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedDesign, kind)
	}
	return p, nil
}
