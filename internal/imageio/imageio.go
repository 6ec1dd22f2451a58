// Package imageio converts image and array files to and from the
// labeled arrays the prediction engine operates on. It is an adapter:
// the engine itself never touches files.
//
// Supported formats: NumPy .npy (any rank), PNG/JPEG/TIFF images
// (2-D, with an optional channel dimension). Loaded data is arranged
// to a requested axis order, growing singleton batch and channel axes
// as needed.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg" // register JPEG decoding

	"golang.org/x/image/tiff"

	"github.com/mosaic-ml/mosaic/internal/array"
)

// ReadArray loads a file as a float32 array arranged to the given axis
// order. A .npy file whose rank matches the requested axes is taken as
// already stored in that order; images and lower-rank npy decode to
// their natural yx / yxc / zyx layout first, with missing channel and
// batch axes grown as singletons.
func ReadArray(path string, axes array.Axes) (*array.Array[float32], error) {
	if strings.EqualFold(filepath.Ext(path), ".npy") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, shape, err := ReadNpy(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if len(shape) == len(axes) {
			return array.FromSlice(data, shape, axes)
		}
		return arrangeAxes(data, shape, axes)
	}

	data, shape, err := readImageFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return arrangeAxes(data, shape, axes)
}

// WriteArray saves a float32 array. For .npy the array is written as
// is; image formats squeeze singleton batch/channel axes, move the
// channel axis last and clamp values to the 0..255 byte range.
// Images with more than 4 channels are split into one file per channel.
func WriteArray(path string, a *array.Array[float32]) error {
	if strings.EqualFold(filepath.Ext(path), ".npy") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return WriteNpy(f, a.Data(), a.Shape())
	}
	return writeImageFile(path, a)
}

// arrangeAxes mirrors how image stacks are conventionally stored:
// 2-D data is yx, 3-D data is zyx for volumetric targets and yxc
// otherwise. Singleton channel and batch axes are grown, then the
// dimensions are permuted into the requested order.
func arrangeAxes(data []float32, shape array.Shape, target array.Axes) (*array.Array[float32], error) {
	var current array.Axes
	switch len(shape) {
	case 2:
		current = array.MustAxes("yx")
	case 3:
		if target.Contains(array.Z) {
			current = array.MustAxes("zyx")
		} else {
			current = array.MustAxes("yxc")
		}
	case 4:
		current = array.MustAxes("zyxc")
	default:
		return nil, fmt.Errorf("cannot infer axes for %d-dimensional data", len(shape))
	}

	// Singleton dimensions do not change the row-major layout, so
	// growing them is a relabeling of the same buffer.
	if !current.Contains(array.Channel) && target.Contains(array.Channel) {
		shape = append(shape.Clone(), 1)
		current = append(current.Clone(), array.Channel)
	}
	if !current.Contains(array.Batch) && target.Contains(array.Batch) {
		shape = append(array.Shape{1}, shape...)
		current = append(array.Axes{array.Batch}, current...)
	}

	a, err := array.FromSlice(data, shape, current)
	if err != nil {
		return nil, err
	}
	if current.Equal(target) {
		return a, nil
	}
	return a.Transpose(target)
}

func readImageFile(path string) ([]float32, array.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, err
	}

	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()

	if gray, ok := img.(*image.Gray); ok {
		data := make([]float32, h*w)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float32(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return data, array.Shape{h, w}, nil
	}

	data := make([]float32, h*w*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*w + x) * 3
			data[i+0] = float32(r >> 8)
			data[i+1] = float32(g >> 8)
			data[i+2] = float32(b >> 8)
		}
	}
	return data, array.Shape{h, w, 3}, nil
}

func writeImageFile(path string, a *array.Array[float32]) error {
	if a.Axes().Contains(array.Z) && a.Extent(array.Z) > 1 {
		return fmt.Errorf("cannot save volumetric data as %s; use .npy", filepath.Ext(path))
	}
	if a.Extent(array.Batch) > 1 {
		return fmt.Errorf("cannot save prediction with batch size > 1 as %s", filepath.Ext(path))
	}

	// Channel-last view of the spatial plane.
	order := array.Axes{}
	for _, ax := range a.Axes() {
		if ax != array.Channel {
			order = append(order, ax)
		}
	}
	if a.Axes().Contains(array.Channel) {
		order = append(order, array.Channel)
	}
	planar, err := a.Transpose(order)
	if err != nil {
		return err
	}

	h := planar.Extent(array.Y)
	w := planar.Extent(array.X)
	c := planar.Extent(array.Channel)
	data := planar.Data()

	if c <= 4 {
		return encodeImage(path, data, h, w, c)
	}

	// Most image formats only support 1, 3 or 4 channels; save the
	// channels separately.
	ext := filepath.Ext(path)
	prefix := strings.TrimSuffix(path, ext)
	plane := make([]float32, h*w)
	for ch := 0; ch < c; ch++ {
		for i := 0; i < h*w; i++ {
			plane[i] = data[i*c+ch]
		}
		if err := encodeImage(fmt.Sprintf("%s-c%d%s", prefix, ch, ext), plane, h, w, 1); err != nil {
			return err
		}
	}
	return nil
}

func encodeImage(path string, data []float32, h, w, c int) error {
	var img image.Image
	switch c {
	case 1:
		gray := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				gray.SetGray(x, y, color.Gray{Y: clampByte(data[y*w+x])})
			}
		}
		img = gray
	case 3, 4:
		rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := (y*w + x) * c
				a := uint8(255)
				if c == 4 {
					a = clampByte(data[i+3])
				}
				rgba.SetNRGBA(x, y, color.NRGBA{
					R: clampByte(data[i+0]),
					G: clampByte(data[i+1]),
					B: clampByte(data[i+2]),
					A: a,
				})
			}
		}
		img = rgba
	default:
		return fmt.Errorf("cannot encode %d-channel image", c)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return tiff.Encode(f, img, nil)
	default:
		return png.Encode(f, img)
	}
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
