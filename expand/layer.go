package expand

import (
	"fmt"

	"github.com/pkg/errors"
)

// Layer is a stage of the expansion pipeline, from high-level source down
// to binary.
type Layer int

const (
	LayerHLL Layer = iota
	LayerCL
	LayerAL
	LayerHL
	LayerBin
)

var layerNames = []string{"hll", "cl", "al", "hl", "bin"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// ParseLayer reads a layer name such as "cl".
func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return 0, errors.Errorf("unknown layer %q (want one of hll, cl, al, hl, bin)", s)
}

// Implemented reports whether this package can expand into the layer.
func (l Layer) Implemented() bool {
	return l == LayerCL
}
