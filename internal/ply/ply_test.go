package ply

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	plyfile "github.com/cobaltgray/go-plyfile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/scan_colorizer/internal/data"
)

const asciiMesh = `ply
format ascii 1.0
comment exported by a mesh tool
element vertex 3
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
property uchar alpha
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0 255
1.5 2 -3 0 255 0 255
4 5 6 0 0 255 255
3 0 1 2
`

func writeFixture(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.ply")
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestReadCloudASCII(t *testing.T) {
	path := writeFixture(t, []byte(asciiMesh))

	cloud, err := ReadCloud(path)
	require.NoError(t, err)
	assert.Equal(t, path, cloud.Name)

	want := []data.Point{
		{X: 0, Y: 0, Z: 0, R: 255},
		{X: 1.5, Y: 2, Z: -3, G: 255},
		{X: 4, Y: 5, Z: 6, B: 255},
	}
	if diff := cmp.Diff(want, cloud.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCloudWithoutColors(t *testing.T) {
	path := writeFixture(t, []byte("ply\nformat ascii 1.0\nelement vertex 1\nproperty double x\nproperty double y\nproperty double z\nend_header\n1 2 3\n"))

	cloud, err := ReadCloud(path)
	require.NoError(t, err)
	assert.Equal(t, []data.Point{{X: 1, Y: 2, Z: 3}}, cloud.Points)
}

// a leading list only element, double coordinates and float colors
func binaryMesh(t *testing.T, material bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_little_endian 1.0\n")
	if material {
		buf.WriteString("element material 1\nproperty list uchar float coeffs\n")
	}
	buf.WriteString("element vertex 2\nproperty double x\nproperty double y\nproperty double z\n")
	buf.WriteString("property float nx\nproperty float red\nproperty float green\nproperty float blue\nend_header\n")

	write := func(v interface{}) { require.NoError(t, binary.Write(&buf, binary.LittleEndian, v)) }
	if material {
		write(uint8(2))
		write(float32(0.5))
		write(float32(0.25))
	}

	write(1.0)
	write(2.0)
	write(3.0)
	write(float32(0))
	write(float32(1))
	write(float32(0.5))
	write(float32(0))

	write(-1.0)
	write(-2.0)
	write(-3.0)
	write(float32(1))
	write(float32(0))
	write(float32(0))
	write(float32(1))
	return buf.Bytes()
}

func TestReadCloudBinary(t *testing.T) {
	for _, material := range []bool{false, true} {
		cloud, err := ReadCloud(writeFixture(t, binaryMesh(t, material)))
		require.NoError(t, err)
		require.Equal(t, 2, cloud.Len())
		assert.Equal(t, data.Point{X: 1, Y: 2, Z: 3, R: 255, G: 128, B: 0}, cloud.Points[0])
		assert.Equal(t, data.Point{X: -1, Y: -2, Z: -3, R: 0, G: 0, B: 255}, cloud.Points[1])
	}
}

func TestReadCloudErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"not ply", "obj\n", ErrUnsupportedFormat},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n", ErrUnsupportedFormat},
		{"big endian", "ply\nformat binary_big_endian 1.0\nelement vertex 0\nproperty float x\nend_header\n", ErrUnsupportedFormat},
		{"short format line", "ply\nformat ascii\nend_header\n", ErrUnsupportedFormat},
		{"unknown property type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float32 x\nend_header\n1\n", ErrUnsupportedFormat},
		{"no end of header", "ply\nformat ascii 1.0\nelement vertex 1\n", ErrUnsupportedFormat},
		{"no vertex", "ply\nformat ascii 1.0\nelement face 0\nproperty list uchar int vertex_indices\nend_header\n", ErrNoVertexElement},
		{"no coordinates", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\n1\n", ErrMissingCoordinates},
		{"list coordinates", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty list uchar float z\nend_header\n1 2 1 3\n", ErrMissingCoordinates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCloud(writeFixture(t, []byte(tt.input)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), err.Error())
		})
	}
}

func TestReadCloudMissingFile(t *testing.T) {
	_, err := ReadCloud(filepath.Join(t.TempDir(), "missing.ply"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadCloudTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"ascii", []byte("ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n1 2 3\n")},
		{"ascii element before vertices", []byte("ply\nformat ascii 1.0\nelement face 3\nproperty list uchar int vertex_indices\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n3 0 1 2\n")},
		{"binary", binaryMesh(t, true)[:len(binaryMesh(t, true))-10]},
		{"huge vertex count", []byte("ply\nformat ascii 1.0\nelement vertex 9223372036854775807\nproperty float x\nproperty float y\nproperty float z\nend_header\n1 2 3\n")},
		{"huge binary vertex count", []byte("ply\nformat binary_little_endian 1.0\nelement vertex 2147483647\nproperty float x\nproperty float y\nproperty float z\nend_header\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCloud(writeFixture(t, tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), err.Error())
		})
	}
}

func TestReadCloudRejectsElementWithoutProperties(t *testing.T) {
	path := writeFixture(t, []byte("ply\nformat ascii 1.0\nelement material 1\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n\n1 2 3\n"))
	_, err := ReadCloud(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestScanHeaderSize(t *testing.T) {
	path := writeFixture(t, binaryMesh(t, false))
	h, err := scanHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "binary_little_endian", h.format)
	require.Len(t, h.elements, 1)
	assert.Equal(t, headerElement{name: "vertex", count: 2, minRecordSize: 3*8 + 4*4, numProps: 7}, h.elements[0])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size()-2*(3*8+4*4), h.size)
}

func TestWriteCloudRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene_semantic.ply")
	cloud := data.NewCloud("scene", []data.Point{
		{X: 0.25, Y: 10.5, Z: -1, R: 189, G: 189, B: 57},
		{X: 3, Y: 4, Z: 5, R: 0, G: 0, B: 0},
	})

	require.NoError(t, WriteCloud(path, cloud))

	read, err := ReadCloud(path)
	require.NoError(t, err)
	require.Equal(t, cloud.Len(), read.Len())
	for i, p := range read.Points {
		want := cloud.Points[i]
		assert.InDelta(t, want.X, p.X, 1e-6)
		assert.InDelta(t, want.Y, p.Y, 1e-6)
		assert.InDelta(t, want.Z, p.Z, 1e-6)
		assert.Equal(t, want.Color(), p.Color())
	}
}

func TestWriteCloudAppendsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene_instance")
	require.NoError(t, WriteCloud(path, data.NewCloud("scene", []data.Point{{X: 1}})))

	read, err := ReadCloud(path)
	require.NoError(t, err)
	assert.Equal(t, 1, read.Len())
	_, err = os.Stat(path + ".ply")
	assert.NoError(t, err)
}

func TestCheckWrittenDetectsShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene_semantic.ply")
	points := make([]data.Point, 10)
	require.NoError(t, WriteCloud(path, data.NewCloud("scene", points)))
	require.NoError(t, checkWritten(path, len(points)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-7))

	err = checkWritten(path, len(points))
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrShortWrite), err.Error())
}

func TestColorComponentClamps(t *testing.T) {
	assert.Equal(t, uint8(255), colorComponent(2, plyfile.PLY_FLOAT))
	assert.Equal(t, uint8(128), colorComponent(0.5, plyfile.PLY_DOUBLE))
	assert.Equal(t, uint8(0), colorComponent(math.Inf(-1), plyfile.PLY_FLOAT))
	assert.Equal(t, uint8(0), colorComponent(math.NaN(), plyfile.PLY_FLOAT))
	assert.Equal(t, uint8(200), colorComponent(200, plyfile.PLY_UCHAR))
	assert.Equal(t, uint8(255), colorComponent(300, plyfile.PLY_SHORT))
	// absent colors are zero
	assert.Equal(t, uint8(0), colorComponent(0, 0))
}
