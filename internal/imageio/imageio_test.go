package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-ml/mosaic/internal/array"
)

func TestNpy_RoundTrip(t *testing.T) {
	shapes := []array.Shape{{7}, {3, 4}, {2, 3, 4}, {1, 1, 5, 5}}

	for _, shape := range shapes {
		data := make([]float32, shape.NumElements())
		for i := range data {
			data[i] = float32(i) * 0.5
		}

		var buf bytes.Buffer
		require.NoError(t, WriteNpy(&buf, data, shape))

		got, gotShape, err := ReadNpy(&buf)
		require.NoError(t, err)
		assert.Equal(t, shape, gotShape)
		assert.Equal(t, data, got)
	}
}

func TestNpy_DataAlignment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNpy(&buf, []float32{1, 2, 3}, array.Shape{3}))

	// The header is padded so the data section starts 64-byte aligned.
	assert.Zero(t, (buf.Len()-3*4)%64)
}

func TestNpy_RejectsGarbage(t *testing.T) {
	_, _, err := ReadNpy(bytes.NewReader([]byte("not an npy file at all")))
	assert.Error(t, err)
}

func TestReadArray_NpyAxes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.npy")

	f, err := os.Create(path)
	require.NoError(t, err)
	data := make([]float32, 6*4)
	for i := range data {
		data[i] = float32(i)
	}
	require.NoError(t, WriteNpy(f, data, array.Shape{6, 4}))
	require.NoError(t, f.Close())

	a, err := ReadArray(path, array.MustAxes("bcyx"))
	require.NoError(t, err)
	assert.Equal(t, array.Shape{1, 1, 6, 4}, a.Shape(), "2-D data grows singleton b and c axes")
	assert.Equal(t, "bcyx", a.Axes().String())
	assert.EqualValues(t, 5, a.At(0, 0, 1, 1))
}

func TestReadArray_Volumetric(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.npy")

	f, err := os.Create(path)
	require.NoError(t, err)
	data := make([]float32, 2*3*4)
	require.NoError(t, WriteNpy(f, data, array.Shape{2, 3, 4}))
	require.NoError(t, f.Close())

	a, err := ReadArray(path, array.MustAxes("bczyx"))
	require.NoError(t, err)
	assert.Equal(t, array.Shape{1, 1, 2, 3, 4}, a.Shape(), "3-D data is zyx for volumetric targets")
}

func TestReadArray_NpyFullRank(t *testing.T) {
	// Full-rank npy data is already stored in the model's axis order and
	// must load without layout inference.
	dir := t.TempDir()

	t.Run("bcyx", func(t *testing.T) {
		path := filepath.Join(dir, "plane.npy")
		a := array.Zeros[float32](array.Shape{1, 1, 6, 4}, array.MustAxes("bcyx"))
		for i := range a.Data() {
			a.Data()[i] = float32(i)
		}
		require.NoError(t, WriteArray(path, a))

		back, err := ReadArray(path, array.MustAxes("bcyx"))
		require.NoError(t, err)
		assert.True(t, back.Equal(a), "a written npy array must read back unchanged")
	})

	t.Run("bczyx", func(t *testing.T) {
		path := filepath.Join(dir, "volume.npy")
		a := array.Zeros[float32](array.Shape{2, 1, 2, 3, 4}, array.MustAxes("bczyx"))
		a.Set(7, 1, 0, 1, 2, 3)
		require.NoError(t, WriteArray(path, a))

		back, err := ReadArray(path, array.MustAxes("bczyx"))
		require.NoError(t, err)
		assert.True(t, back.Equal(a))
	})
}

func TestReadArray_Png(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.png")

	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(10*y + x)})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	a, err := ReadArray(path, array.MustAxes("bcyx"))
	require.NoError(t, err)
	assert.Equal(t, array.Shape{1, 1, 3, 4}, a.Shape())
	assert.EqualValues(t, 21, a.At(0, 0, 2, 1))
}

func TestWriteArray_PngRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.png")

	a := array.Zeros[float32](array.Shape{1, 1, 3, 4}, array.MustAxes("bcyx"))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			a.Set(float32(10*y+x), 0, 0, y, x)
		}
	}
	require.NoError(t, WriteArray(path, a))

	back, err := ReadArray(path, array.MustAxes("bcyx"))
	require.NoError(t, err)
	assert.True(t, back.Equal(a), "byte-valued data survives a PNG round trip")
}

func TestWriteArray_TiffRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.tiff")

	a := array.Zeros[float32](array.Shape{1, 1, 5, 5}, array.MustAxes("bcyx"))
	a.Set(200, 0, 0, 2, 2)
	require.NoError(t, WriteArray(path, a))

	back, err := ReadArray(path, array.MustAxes("bcyx"))
	require.NoError(t, err)
	assert.True(t, back.Equal(a))
}

func TestWriteArray_RejectsBatches(t *testing.T) {
	dir := t.TempDir()
	a := array.Zeros[float32](array.Shape{2, 1, 3, 3}, array.MustAxes("bcyx"))
	err := WriteArray(filepath.Join(dir, "batch.png"), a)
	assert.Error(t, err, "image formats cannot hold a batch dimension > 1")
}

func TestWriteArray_SplitsManyChannels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.png")

	a := array.Zeros[float32](array.Shape{1, 6, 3, 3}, array.MustAxes("bcyx"))
	require.NoError(t, WriteArray(path, a))

	for ch := 0; ch < 6; ch++ {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("multi-c%d.png", ch)))
		require.NoError(t, err, "channel %d must be saved separately", ch)
	}
}
