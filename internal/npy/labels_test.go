package npy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func encode(t *testing.T, val interface{}) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, val))
	return &buf
}

func TestReadCompositeLabels(t *testing.T) {
	want := []int32{5003, 5004, -1, 25012}

	tests := []struct {
		name string
		val  interface{}
	}{
		{"int32", []int32{5003, 5004, -1, 25012}},
		{"int64", []int64{5003, 5004, -1, 25012}},
		{"float64", []float64{5003, 5004, -1, 25012}},
		{"float32", []float32{5003, 5004, -1, 25012}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := ReadCompositeLabels(encode(t, tt.val))
			require.NoError(t, err)
			assert.Equal(t, want, labels)
		})
	}
}

func TestReadCompositeLabelsUnsigned(t *testing.T) {
	labels, err := ReadCompositeLabels(encode(t, []uint16{0, 1001, 19999}))
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1001, 19999}, labels)
}

func TestReadCompositeLabelsRejectsMatrix(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err := ReadCompositeLabels(encode(t, m))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotVector), err.Error())
}

func TestReadCompositeLabelsRejectsGarbage(t *testing.T) {
	_, err := ReadCompositeLabels(bytes.NewReader([]byte("not a numpy file")))
	assert.Error(t, err)
}

func TestLoadCompositeLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.npy")
	require.NoError(t, os.WriteFile(path, encode(t, []int32{1, 2, 3}).Bytes(), 0644))

	labels, err := LoadCompositeLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, labels)

	_, err = LoadCompositeLabels(filepath.Join(t.TempDir(), "missing.npy"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
