package ply

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unsafe"

	plyfile "github.com/cobaltgray/go-plyfile"

	"github.com/ecopia-map/scan_colorizer/internal/data"
)

// sizes of the scalar types the ply library understands
var typeSizes = map[string]int64{
	"char": 1, "uchar": 1,
	"short": 2, "ushort": 2,
	"int": 4, "uint": 4,
	"float": 4, "double": 8,
}

const (
	maxHeaderSize = 1 << 20
	// records preallocated before any data has been read
	maxPreallocated = 1 << 20
)

type headerElement struct {
	name  string
	count int64
	// smallest binary record: scalar sizes plus list counts
	minRecordSize int64
	numProps      int
}

type header struct {
	format   string
	elements []headerElement
	size     int64 // bytes up to and including end_header
}

// scanHeader validates the header before the ply library sees the file. The library
// terminates the process on malformed input, so anything it cannot read is rejected here.
func scanHeader(filePath string) (*header, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	h := &header{}
	for lineNumber := 0; ; lineNumber++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header not terminated", ErrUnsupportedFormat)
		}
		h.size += int64(len(line))
		if h.size > maxHeaderSize {
			return nil, fmt.Errorf("%w: header larger than %d bytes", ErrUnsupportedFormat, maxHeaderSize)
		}

		fields := strings.Fields(line)
		if lineNumber == 0 {
			if len(fields) != 1 || fields[0] != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrUnsupportedFormat)
			}
			continue
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, strings.TrimSpace(line))
			}
			// the library reads binary data in host order and never swaps bytes
			switch fields[1] {
			case "ascii", "binary_little_endian":
				h.format = fields[1]
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fields[1])
			}
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: malformed element line %q", ErrUnsupportedFormat, strings.TrimSpace(line))
			}
			count, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: malformed element count %q", ErrUnsupportedFormat, fields[2])
			}
			h.elements = append(h.elements, headerElement{name: fields[1], count: count})
		case "property":
			if len(h.elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrUnsupportedFormat)
			}
			size, err := propertyMinSize(fields)
			if err != nil {
				return nil, err
			}
			el := &h.elements[len(h.elements)-1]
			el.minRecordSize += size
			el.numProps++
		case "end_header":
			if h.format == "" {
				return nil, fmt.Errorf("%w: missing format line", ErrUnsupportedFormat)
			}
			return h, nil
		}
		// comment and obj_info lines are ignored
	}
}

func propertyMinSize(fields []string) (int64, error) {
	if len(fields) == 5 && fields[1] == "list" {
		countSize, ok := typeSizes[fields[2]]
		if _, itemOk := typeSizes[fields[3]]; !ok || !itemOk {
			return 0, fmt.Errorf("%w: list property types %s %s", ErrUnsupportedFormat, fields[2], fields[3])
		}
		return countSize, nil
	}
	if len(fields) != 3 {
		return 0, fmt.Errorf("%w: malformed property line %q", ErrUnsupportedFormat, strings.Join(fields, " "))
	}
	size, ok := typeSizes[fields[1]]
	if !ok {
		return 0, fmt.Errorf("%w: property type %s", ErrUnsupportedFormat, fields[1])
	}
	return size, nil
}

// checkData makes sure the records the library will read up to the vertex element are present.
// The library exits on a short ascii file and reads garbage from a short binary one.
func checkData(filePath string, h *header) error {
	var needed []headerElement
	for _, el := range h.elements {
		if el.count > math.MaxInt32 {
			return fmt.Errorf("%w: element %s declares %d records", io.ErrUnexpectedEOF, el.name, el.count)
		}
		if el.count > 0 && el.numProps == 0 {
			return fmt.Errorf("%w: element %s has records but no properties", ErrUnsupportedFormat, el.name)
		}
		needed = append(needed, el)
		if el.name == vertexElementName {
			break
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if h.format == "ascii" {
		var records int64
		for _, el := range needed {
			records += el.count
		}
		if _, err := file.Seek(h.size, io.SeekStart); err != nil {
			return err
		}
		lines, err := countLines(file, records)
		if err != nil {
			return err
		}
		if lines < records {
			return fmt.Errorf("%w: %d records declared, %d lines present", io.ErrUnexpectedEOF, records, lines)
		}
		return nil
	}

	info, err := file.Stat()
	if err != nil {
		return err
	}
	remaining := info.Size() - h.size
	for _, el := range needed {
		if el.minRecordSize > 0 && el.count > remaining/el.minRecordSize {
			return fmt.Errorf("%w: element %s declares %d records of at least %d bytes, %d bytes left",
				io.ErrUnexpectedEOF, el.name, el.count, el.minRecordSize, remaining)
		}
		remaining -= el.count * el.minRecordSize
	}
	return nil
}

// counts lines until limit is reached, a last line without newline counts
func countLines(r io.Reader, limit int64) (int64, error) {
	br := bufio.NewReader(r)
	var lines int64
	for lines < limit {
		line, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			// long line, keep reading until its end
			continue
		}
		if err == io.EOF {
			if len(line) > 0 {
				lines++
			}
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines++
	}
	return lines, nil
}

// ReadCloud reads the vertex element of a ply file. Only x, y, z and red, green, blue are kept;
// other vertex properties and other elements are skipped.
func ReadCloud(filePath string) (*data.Cloud, error) {
	points, err := readPoints(plyPath(filePath))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return data.NewCloud(filePath, points), nil
}

func readPoints(filePath string) ([]data.Point, error) {
	h, err := scanHeader(filePath)
	if err != nil {
		return nil, err
	}
	hasVertex := false
	for _, el := range h.elements {
		hasVertex = hasVertex || el.name == vertexElementName
	}
	if !hasVertex {
		return nil, ErrNoVertexElement
	}
	if err := checkData(filePath, h); err != nil {
		return nil, err
	}

	libMu.Lock()
	defer libMu.Unlock()

	cplyfile, elemNames, err := openForReading(filePath)
	if err != nil {
		return nil, err
	}
	defer plyfile.PlyClose(cplyfile)

	for _, name := range elemNames {
		props, count, _ := plyfile.PlyGetElementDescription(cplyfile, name)
		if name == vertexElementName {
			return readVertices(cplyfile, props, count)
		}
		skipElement(cplyfile, name, props, count)
	}
	return nil, ErrNoVertexElement
}

// the wrapper dereferences the header the library returns, which is nil when the file vanished
func openForReading(filePath string) (cplyfile plyfile.CPlyFile, elemNames []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot open ply file %s: %v", filePath, r)
		}
	}()
	cplyfile, elemNames = plyfile.PlyOpenForReading(filePath)
	return cplyfile, elemNames, nil
}

// every requested property is converted to double by the library
type vertexRecord struct {
	X, Y, Z float64
	R, G, B float64
}

func readVertices(cplyfile plyfile.CPlyFile, props []plyfile.PlyProperty, count int) ([]data.Point, error) {
	described := make(map[string]plyfile.PlyProperty, len(props))
	for _, prop := range props {
		if prop.Is_list == plyfile.PLY_SCALAR {
			described[prop.Name] = prop
		}
	}
	for _, name := range []string{"x", "y", "z"} {
		if _, ok := described[name]; !ok {
			return nil, ErrMissingCoordinates
		}
	}

	var record vertexRecord
	request := func(name string, offset uintptr) {
		plyfile.PlyGetProperty(cplyfile, vertexElementName, plyfile.PlyProperty{
			Name:          name,
			External_type: described[name].External_type,
			Internal_type: plyfile.PLY_DOUBLE,
			Offset:        int(offset),
		})
	}
	request("x", unsafe.Offsetof(record.X))
	request("y", unsafe.Offsetof(record.Y))
	request("z", unsafe.Offsetof(record.Z))

	colors := []struct {
		name   string
		offset uintptr
	}{
		{"red", unsafe.Offsetof(record.R)},
		{"green", unsafe.Offsetof(record.G)},
		{"blue", unsafe.Offsetof(record.B)},
	}
	for _, c := range colors {
		if _, ok := described[c.name]; ok {
			request(c.name, c.offset)
		}
	}

	points := make([]data.Point, 0, min(count, maxPreallocated))
	for i := 0; i < count; i++ {
		record = vertexRecord{}
		plyfile.PlyGetElement(cplyfile, &record, unsafe.Sizeof(record))
		points = append(points, data.Point{
			X: record.X,
			Y: record.Y,
			Z: record.Z,
			R: colorComponent(record.R, described["red"].External_type),
			G: colorComponent(record.G, described["green"].External_type),
			B: colorComponent(record.B, described["blue"].External_type),
		})
	}
	return points, nil
}

// The library reads elements in file order, so the ones before the vertices are read and dropped.
// One property has to be requested to select the element; a scalar one is preferred since
// the library allocates storage for requested lists.
func skipElement(cplyfile plyfile.CPlyFile, name string, props []plyfile.PlyProperty, count int) {
	if count == 0 || len(props) == 0 {
		return
	}
	selected := props[0]
	for _, prop := range props {
		if prop.Is_list == plyfile.PLY_SCALAR {
			selected = prop
			break
		}
	}

	request := plyfile.PlyProperty{
		Name:          selected.Name,
		External_type: selected.External_type,
		Internal_type: plyfile.PLY_DOUBLE,
		Offset:        8,
	}
	if selected.Is_list == plyfile.PLY_LIST {
		request.Is_list = plyfile.PLY_LIST
		request.Count_external = selected.Count_external
		request.Count_internal = plyfile.PLY_INT
		request.Count_offset = 0
	}
	plyfile.PlyGetProperty(cplyfile, name, request)

	var record [16]byte
	for i := 0; i < count; i++ {
		plyfile.PlyGetElement(cplyfile, &record, unsafe.Sizeof(record))
	}
}

// float colors are stored in [0,1]
func colorComponent(v float64, externalType int) uint8 {
	if externalType == plyfile.PLY_FLOAT || externalType == plyfile.PLY_DOUBLE {
		v *= 255
	}
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
