// Package npy loads per-point composite label arrays stored as NumPy .npy files.
package npy

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sbinet/npyio"
)

var (
	ErrNotVector        = errors.New("label array must be one dimensional")
	ErrUnsupportedDtype = errors.New("unsupported label dtype")
)

// LoadCompositeLabels reads a 1-D array of composite labels from a .npy file.
// Integer and floating point arrays are accepted and converted to int32.
func LoadCompositeLabels(filePath string) ([]int32, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	labels, err := ReadCompositeLabels(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return labels, nil
}

// ReadCompositeLabels reads a 1-D label array from a .npy stream
func ReadCompositeLabels(r io.Reader) ([]int32, error) {
	reader, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	shape := reader.Header.Descr.Shape
	if len(shape) != 1 && !(len(shape) == 2 && shape[1] == 1) {
		return nil, fmt.Errorf("%w: shape %v", ErrNotVector, shape)
	}

	// dtype strings look like "<i4", "|u1" or ">f8"
	dtype := strings.TrimLeft(reader.Header.Descr.Type, "<>|=")
	switch dtype {
	case "i4":
		var labels []int32
		err = reader.Read(&labels)
		return labels, err
	case "i8":
		var values []int64
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "i2":
		var values []int16
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "i1":
		var values []int8
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "u1":
		var values []uint8
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "u2":
		var values []uint16
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "u4":
		var values []uint32
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "u8":
		var values []uint64
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convert(values), nil
	case "f4":
		var values []float32
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convertFloat(values), nil
	case "f8":
		var values []float64
		if err := reader.Read(&values); err != nil {
			return nil, err
		}
		return convertFloat(values), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDtype, reader.Header.Descr.Type)
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// wraps like numpy astype(int32)
func convert[T integer](values []T) []int32 {
	labels := make([]int32, len(values))
	for i, v := range values {
		labels[i] = int32(v)
	}
	return labels
}

// truncates toward zero like numpy astype(int32)
func convertFloat[T float32 | float64](values []T) []int32 {
	labels := make([]int32, len(values))
	for i, v := range values {
		labels[i] = int32(math.Trunc(float64(v)))
	}
	return labels
}
