package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/imageio"
	"github.com/mosaic-ml/mosaic/internal/predict"
)

const testModel = `
name: test-model
inputs:
  - name: raw
    axes: bcyx
    shape:
      min: [1, 1, 4, 4]
      step: [0, 0, 4, 4]
outputs:
  - name: out
    axes: bcyx
    halo: [0, 0, 2, 2]
    shape:
      reference_tensor: raw
      scale: [1, 1, 1, 1]
      offset: [0, 0, 0, 0]
`

func writeTestModel(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testModel), 0o644))
	return path
}

func writeTestInput(t *testing.T, path string, shape array.Shape) *array.Array[float32] {
	t.Helper()
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i % 251)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, imageio.WriteNpy(f, data, shape))
	require.NoError(t, f.Close())

	a, err := array.FromSlice(data, shape, array.MustAxes("yx"))
	require.NoError(t, err)
	return a
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestRunPredict_TiledIdentity runs the whole pipeline over npy files:
// load, tile, predict with the identity backend, stitch, save.
func TestRunPredict_TiledIdentity(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.npy")
	out := filepath.Join(dir, "out.npy")

	want := writeTestInput(t, in, array.Shape{10, 10})
	err := runPredict(predictOptions{
		modelPath: writeTestModel(t, dir),
		inputs:    []string{in},
		outputs:   []string{out},
		backend:   "identity",
		tiling:    true,
		parallel:  1,
		logger:    discard(),
	})
	require.NoError(t, err)

	got, err := imageio.ReadArray(out, array.MustAxes("bcyx"))
	require.NoError(t, err)
	flat := got.Data()
	assert.Equal(t, want.Data(), flat, "tiled identity prediction must reproduce the input")
}

// TestRunPredict_PaddedIdentity exercises the padded path end to end.
func TestRunPredict_PaddedIdentity(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.npy")
	out := filepath.Join(dir, "out.npy")

	want := writeTestInput(t, in, array.Shape{7, 9})
	err := runPredict(predictOptions{
		modelPath: writeTestModel(t, dir),
		inputs:    []string{in},
		outputs:   []string{out},
		backend:   "identity",
		padding:   true,
		parallel:  1,
		logger:    discard(),
	})
	require.NoError(t, err)

	got, err := imageio.ReadArray(out, array.MustAxes("bcyx"))
	require.NoError(t, err)
	assert.Equal(t, want.Data(), got.Data())
}

// TestRunPredict_ParallelSamples checks that independent samples can be
// predicted concurrently.
func TestRunPredict_ParallelSamples(t *testing.T) {
	dir := t.TempDir()

	var inputs, outputs []string
	for _, name := range []string{"a", "b", "c"} {
		in := filepath.Join(dir, name+".npy")
		writeTestInput(t, in, array.Shape{8, 8})
		inputs = append(inputs, in)
		outputs = append(outputs, filepath.Join(dir, name+"-out.npy"))
	}

	err := runPredict(predictOptions{
		modelPath: writeTestModel(t, dir),
		inputs:    inputs,
		outputs:   outputs,
		backend:   "identity",
		tiling:    true,
		parallel:  3,
		logger:    discard(),
	})
	require.NoError(t, err)

	for _, out := range outputs {
		_, err := os.Stat(out)
		assert.NoError(t, err)
	}
}

// TestRunPredict_RegisteredBackend runs the pipeline through a backend
// added at runtime via the registry.
func TestRunPredict_RegisteredBackend(t *testing.T) {
	registerBackend("double", func(inputs []*array.Array[float32]) ([]*array.Array[float32], error) {
		out := inputs[0].Clone()
		data := out.Data()
		for i := range data {
			data[i] *= 2
		}
		return []*array.Array[float32]{out}, nil
	})

	dir := t.TempDir()
	in := filepath.Join(dir, "in.npy")
	out := filepath.Join(dir, "out.npy")

	want := writeTestInput(t, in, array.Shape{8, 8})
	err := runPredict(predictOptions{
		modelPath: writeTestModel(t, dir),
		inputs:    []string{in},
		outputs:   []string{out},
		backend:   "double",
		tiling:    true,
		parallel:  1,
		logger:    discard(),
	})
	require.NoError(t, err)

	got, err := imageio.ReadArray(out, array.MustAxes("bcyx"))
	require.NoError(t, err)
	for i, v := range got.Data() {
		require.Equal(t, want.Data()[i]*2, v, "element %d", i)
	}
}

// TestRunPredict_DeclaredOutputShape checks that the tiled path
// allocates its output buffer from the model descriptor, so a declared
// output shape that disagrees with the input is rejected.
func TestRunPredict_DeclaredOutputShape(t *testing.T) {
	const fixedOutputModel = `
name: fixed-output
inputs:
  - name: raw
    axes: bcyx
    shape:
      min: [1, 1, 4, 4]
      step: [0, 0, 4, 4]
outputs:
  - name: out
    axes: bcyx
    halo: [0, 0, 2, 2]
    shape: [1, 1, 4, 4]
`
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(modelPath, []byte(fixedOutputModel), 0o644))

	in := filepath.Join(dir, "in.npy")
	writeTestInput(t, in, array.Shape{8, 8})

	err := runPredict(predictOptions{
		modelPath: modelPath,
		inputs:    []string{in},
		outputs:   []string{filepath.Join(dir, "out.npy")},
		backend:   "identity",
		tiling:    true,
		parallel:  1,
		logger:    discard(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, predict.ErrShapeMismatch)
}

// TestRunPredict_UnknownBackend checks backend lookup failures.
func TestRunPredict_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	err := runPredict(predictOptions{
		modelPath: writeTestModel(t, dir),
		inputs:    []string{"in.npy"},
		outputs:   []string{"out.npy"},
		backend:   "quantum",
		parallel:  1,
		logger:    discard(),
	})
	assert.Error(t, err)
}
