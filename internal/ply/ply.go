// Package ply reads and writes colored point clouds in the Stanford PLY format.
package ply

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unsafe"

	plyfile "github.com/cobaltgray/go-plyfile"

	"github.com/ecopia-map/scan_colorizer/internal/data"
)

var (
	ErrNoVertexElement    = errors.New("ply file has no vertex element")
	ErrUnsupportedFormat  = errors.New("unsupported ply format")
	ErrMissingCoordinates = errors.New("vertex element must have x, y and z properties")
)

// the ply library keeps its line buffers in static storage, every call goes through this lock
var libMu sync.Mutex

// Vertex is the in-memory layout handed to the ply writer
type Vertex struct {
	X, Y, Z float32
	R, G, B uint8
}

const vertexElementName = "vertex"

// the ply library appends the extension when it is missing
func plyPath(filePath string) string {
	if strings.HasSuffix(filePath, ".ply") {
		return filePath
	}
	return filePath + ".ply"
}

// WritePlyFile writes the vertices to a binary little endian ply file
func WritePlyFile(filePath string, verts []Vertex) error {
	var v Vertex
	elemNames := []string{vertexElementName}
	vertProps := []plyfile.PlyProperty{
		{Name: "x", External_type: plyfile.PLY_FLOAT, Internal_type: plyfile.PLY_FLOAT, Offset: int(unsafe.Offsetof(v.X))},
		{Name: "y", External_type: plyfile.PLY_FLOAT, Internal_type: plyfile.PLY_FLOAT, Offset: int(unsafe.Offsetof(v.Y))},
		{Name: "z", External_type: plyfile.PLY_FLOAT, Internal_type: plyfile.PLY_FLOAT, Offset: int(unsafe.Offsetof(v.Z))},
		{Name: "red", External_type: plyfile.PLY_UCHAR, Internal_type: plyfile.PLY_UCHAR, Offset: int(unsafe.Offsetof(v.R))},
		{Name: "green", External_type: plyfile.PLY_UCHAR, Internal_type: plyfile.PLY_UCHAR, Offset: int(unsafe.Offsetof(v.G))},
		{Name: "blue", External_type: plyfile.PLY_UCHAR, Internal_type: plyfile.PLY_UCHAR, Offset: int(unsafe.Offsetof(v.B))},
	}

	libMu.Lock()
	var version float32
	cplyfile := plyfile.PlyOpenForWriting(filePath, len(elemNames), elemNames, plyfile.PLY_BINARY_LE, &version)
	if cplyfile == nil {
		libMu.Unlock()
		return errors.New("cannot open ply file for writing: " + filePath)
	}

	plyfile.PlyElementCount(cplyfile, vertexElementName, len(verts))
	for _, prop := range vertProps {
		plyfile.PlyDescribeProperty(cplyfile, vertexElementName, prop)
	}
	plyfile.PlyHeaderComplete(cplyfile)

	plyfile.PlyPutElementSetup(cplyfile, vertexElementName)
	for _, vertex := range verts {
		plyfile.PlyPutElement(cplyfile, vertex)
	}
	plyfile.PlyClose(cplyfile)
	libMu.Unlock()

	return checkWritten(plyPath(filePath), len(verts))
}

// The library does not report write failures, so the file size is compared with
// the header plus one packed record per vertex.
func checkWritten(filePath string, numVertices int) error {
	h, err := scanHeader(filePath)
	if err != nil {
		return fmt.Errorf("checking %s: %w", filePath, err)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	want := h.size + int64(numVertices)*int64(binary.Size(Vertex{}))
	if info.Size() != want {
		return fmt.Errorf("%w: %s has %d bytes, want %d", io.ErrShortWrite, filePath, info.Size(), want)
	}
	return nil
}

// WriteCloud writes a point cloud, coordinates are stored as float32
func WriteCloud(filePath string, cloud *data.Cloud) error {
	verts := make([]Vertex, len(cloud.Points))
	for i, p := range cloud.Points {
		verts[i] = Vertex{
			X: float32(p.X),
			Y: float32(p.Y),
			Z: float32(p.Z),
			R: p.R,
			G: p.G,
			B: p.B,
		}
	}
	return WritePlyFile(filePath, verts)
}
