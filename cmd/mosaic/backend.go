package main

import (
	"fmt"
	"sort"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/predict"
)

// Prediction backends are external collaborators; the CLI only knows
// them through the registry. The identity backend is built in for
// verifying the tiling/padding plumbing end to end.
var backends = map[string]predict.Func[float32]{
	"identity": func(inputs []*array.Array[float32]) ([]*array.Array[float32], error) {
		outputs := make([]*array.Array[float32], len(inputs))
		for i, in := range inputs {
			outputs[i] = in.Clone()
		}
		return outputs, nil
	},
}

// registerBackend makes a prediction function available to the CLI
// under the given name.
func registerBackend(name string, fn predict.Func[float32]) {
	backends[name] = fn
}

func lookupBackend(name string) (predict.Func[float32], error) {
	fn, ok := backends[name]
	if !ok {
		names := make([]string, 0, len(backends))
		for n := range backends {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, names)
	}
	return fn, nil
}
