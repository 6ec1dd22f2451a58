package imageio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mosaic-ml/mosaic/internal/array"
)

// NumPy .npy v1 format:
// [6 bytes: magic "\x93NUMPY"]
// [1 byte: major version] [1 byte: minor version]
// [2 bytes: header_len (uint16 LE)]
// [header_len bytes: Python dict literal, padded with spaces to 64-byte
//  alignment and terminated by '\n']
// [tensor data: raw bytes, C order]

var npyMagic = []byte("\x93NUMPY")

var npyHeaderRe = regexp.MustCompile(
	`'descr':\s*'([^']+)',\s*'fortran_order':\s*(True|False),\s*'shape':\s*\(([^)]*)\)`)

// ReadNpy reads a .npy array and converts it to float32. Supported
// source dtypes are little-endian f4, f8 and u1.
func ReadNpy(r io.Reader) ([]float32, array.Shape, error) {
	magic := make([]byte, 8)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, fmt.Errorf("reading npy magic: %w", err)
	}
	if string(magic[:6]) != string(npyMagic) {
		return nil, nil, fmt.Errorf("invalid npy magic bytes")
	}
	if magic[6] != 1 {
		return nil, nil, fmt.Errorf("unsupported npy version %d.%d", magic[6], magic[7])
	}

	var headerLen uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, nil, fmt.Errorf("reading npy header size: %w", err)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("reading npy header: %w", err)
	}

	m := npyHeaderRe.FindStringSubmatch(string(header))
	if m == nil {
		return nil, nil, fmt.Errorf("malformed npy header: %q", header)
	}
	descr, fortran, shapeStr := m[1], m[2], m[3]
	if fortran == "True" {
		return nil, nil, fmt.Errorf("fortran-ordered npy arrays are not supported")
	}

	shape := array.Shape{}
	for _, part := range strings.Split(shapeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, err := strconv.Atoi(part)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed npy shape %q: %w", shapeStr, err)
		}
		shape = append(shape, dim)
	}

	n := shape.NumElements()
	data := make([]float32, n)
	switch descr {
	case "<f4", "|f4":
		raw := make([]byte, 4*n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, nil, fmt.Errorf("reading npy data: %w", err)
		}
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	case "<f8":
		raw := make([]byte, 8*n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, nil, fmt.Errorf("reading npy data: %w", err)
		}
		for i := range data {
			data[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:])))
		}
	case "|u1", "<u1":
		raw := make([]byte, n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, nil, fmt.Errorf("reading npy data: %w", err)
		}
		for i := range data {
			data[i] = float32(raw[i])
		}
	default:
		return nil, nil, fmt.Errorf("unsupported npy dtype %q", descr)
	}
	return data, shape, nil
}

// WriteNpy writes a float32 array in .npy v1 format (dtype <f4).
func WriteNpy(w io.Writer, data []float32, shape array.Shape) error {
	if shape.NumElements() != len(data) {
		return fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%s), }", shapeStr)

	// Pad so that the data section starts 64-byte aligned.
	total := len(npyMagic) + 2 + 2 + len(header) + 1
	if pad := (64 - total%64) % 64; pad > 0 {
		header += strings.Repeat(" ", pad)
	}
	header += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}

	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	_, err := w.Write(raw)
	return err
}
