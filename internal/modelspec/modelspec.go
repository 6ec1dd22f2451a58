// Package modelspec loads declarative model descriptors: the axis
// lists, shape families and halos that the prediction engine consumes
// as plain configuration. The descriptor format is YAML.
//
// An example descriptor:
//
//	name: nucleus-segmentation
//	inputs:
//	  - name: raw
//	    axes: bcyx
//	    shape:
//	      min: [1, 1, 32, 32]
//	      step: [0, 0, 16, 16]
//	outputs:
//	  - name: probabilities
//	    axes: bcyx
//	    halo: [0, 0, 32, 32]
//	    shape:
//	      reference_tensor: raw
//	      scale: [1, 1, 1, 1]
//	      offset: [0, 0, 0, 0]
package modelspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mosaic-ml/mosaic/internal/array"
)

// Descriptor is a loaded model description.
type Descriptor struct {
	Name    string       `yaml:"name"`
	Inputs  []TensorSpec `yaml:"inputs"`
	Outputs []TensorSpec `yaml:"outputs"`
}

// TensorSpec describes one named input or output tensor.
type TensorSpec struct {
	Name  string    `yaml:"name"`
	Axes  AxesField `yaml:"axes"`
	Shape ShapeNode `yaml:"shape"`

	// Halo is output-only: one non-negative margin per axis that the
	// predictor needs around each tile.
	Halo []int `yaml:"halo"`
}

// AxesField parses the compact axis string ("bcyx") into axis labels.
type AxesField struct {
	array.Axes
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *AxesField) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	axes, err := array.ParseAxes(s)
	if err != nil {
		return err
	}
	f.Axes = axes
	return nil
}

// ShapeNode is the YAML shape union: a plain sequence declares a fixed
// shape, a mapping declares either a min+step family (inputs) or an
// implicit shape derived from a reference tensor (outputs).
type ShapeNode struct {
	Fixed []int

	Min  []int
	Step []int

	Reference string
	Scale     []float64
	Offset    []float64
}

// UnmarshalYAML implements yaml.Unmarshaler for the shape union.
func (n *ShapeNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&n.Fixed)
	}
	var m struct {
		Min       []int     `yaml:"min"`
		Step      []int     `yaml:"step"`
		Reference string    `yaml:"reference_tensor"`
		Scale     []float64 `yaml:"scale"`
		Offset    []float64 `yaml:"offset"`
	}
	if err := value.Decode(&m); err != nil {
		return err
	}
	n.Min, n.Step = m.Min, m.Step
	n.Reference, n.Scale, n.Offset = m.Reference, m.Scale, m.Offset
	if n.Min == nil && n.Reference == "" {
		return fmt.Errorf("shape mapping needs either min/step or reference_tensor")
	}
	return nil
}

// Implicit reports whether the shape is derived from a reference tensor.
func (n ShapeNode) Implicit() bool {
	return n.Reference != ""
}

// Spec converts the node to the engine's shape declaration. Implicit
// output shapes have no standalone spec and are resolved against their
// reference input instead.
func (n ShapeNode) Spec() (array.ShapeSpec, error) {
	switch {
	case n.Fixed != nil:
		return array.NewFixedShape(n.Fixed), nil
	case n.Min != nil:
		return array.NewParametrizedShape(n.Min, n.Step), nil
	default:
		return array.ShapeSpec{}, fmt.Errorf("implicit shape has no standalone spec; resolve it against %q", n.Reference)
	}
}

// Load reads and validates a descriptor file.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses and validates a descriptor document.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing model descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks internal consistency of the descriptor.
func (d *Descriptor) Validate() error {
	if len(d.Inputs) == 0 {
		return fmt.Errorf("model %q declares no inputs", d.Name)
	}
	if len(d.Outputs) == 0 {
		return fmt.Errorf("model %q declares no outputs", d.Name)
	}

	inputs := map[string]*TensorSpec{}
	for i := range d.Inputs {
		in := &d.Inputs[i]
		if !in.Shape.Implicit() {
			spec, err := in.Shape.Spec()
			if err != nil {
				return fmt.Errorf("input %q: %w", in.Name, err)
			}
			if err := spec.Validate(in.Axes.Axes); err != nil {
				return fmt.Errorf("input %q: %w", in.Name, err)
			}
		} else {
			return fmt.Errorf("input %q: inputs cannot have an implicit shape", in.Name)
		}
		inputs[in.Name] = in
	}

	for i := range d.Outputs {
		out := &d.Outputs[i]
		if out.Halo != nil && len(out.Halo) != len(out.Axes.Axes) {
			return fmt.Errorf("output %q: halo has %d entries for %d axes", out.Name, len(out.Halo), len(out.Axes.Axes))
		}
		for _, h := range out.Halo {
			if h < 0 {
				return fmt.Errorf("output %q: negative halo %d", out.Name, h)
			}
		}
		if out.Shape.Implicit() {
			if _, ok := inputs[out.Shape.Reference]; !ok {
				return fmt.Errorf("output %q references unknown tensor %q", out.Name, out.Shape.Reference)
			}
			if len(out.Shape.Scale) != len(out.Axes.Axes) || len(out.Shape.Offset) != len(out.Axes.Axes) {
				return fmt.Errorf("output %q: scale/offset length does not match axes", out.Name)
			}
		}
	}
	return nil
}

// Input returns the named input spec.
func (d *Descriptor) Input(name string) (*TensorSpec, bool) {
	for i := range d.Inputs {
		if d.Inputs[i].Name == name {
			return &d.Inputs[i], true
		}
	}
	return nil, false
}

// ResolveOutputShape computes the concrete shape of an output with an
// implicit shape declaration, given the concrete shape of its reference
// input: scale*extent + 2*offset per axis. Fixed output shapes are
// returned as declared.
func (t *TensorSpec) ResolveOutputShape(refShape array.Shape) (array.Shape, error) {
	if !t.Shape.Implicit() {
		if t.Shape.Fixed == nil {
			return nil, fmt.Errorf("output %q: no fixed shape declared", t.Name)
		}
		return array.Shape(t.Shape.Fixed), nil
	}
	if len(refShape) != len(t.Axes.Axes) {
		return nil, fmt.Errorf("output %q: reference shape %v does not match axes %q", t.Name, refShape, t.Axes.Axes)
	}
	shape := make(array.Shape, len(refShape))
	for d := range refShape {
		shape[d] = int(t.Shape.Scale[d]*float64(refShape[d]) + 2*t.Shape.Offset[d])
	}
	return shape, nil
}

// IdentitySpatial reports whether an implicit output shape keeps the
// spatial shape of its reference (scale 1, offset 0 on spatial axes).
// The tiled path only supports this case.
func (t *TensorSpec) IdentitySpatial() bool {
	if !t.Shape.Implicit() {
		return false
	}
	for d, ax := range t.Axes.Axes {
		if !ax.Spatial() {
			continue
		}
		if t.Shape.Scale[d] != 1 || t.Shape.Offset[d] != 0 {
			return false
		}
	}
	return true
}
