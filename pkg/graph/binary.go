package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes   = "STREETMP"
	version      = uint32(1)
	maxNodes     = 10_000_000
	maxEdges     = 50_000_000
	maxNameBytes = 1 << 30
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic     [8]byte
	Version   uint32
	NumNodes  uint32
	NumEdges  uint32
	NameBytes uint32
}

// WriteBinary serializes g to a snapshot file. Nodes are stored in ID order and
// each undirected edge once; weights are not stored since they are derived
// from coordinates on load.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	n := g.NumNodes()
	lat := make([]float64, n)
	lon := make([]float64, n)
	nameOff := make([]uint32, n+1)
	var names []byte
	for id := range n {
		node := g.Node(id)
		lat[id] = node.Lat
		lon[id] = node.Lon
		nameOff[id] = uint32(len(names))
		names = append(names, node.Name...)
	}
	nameOff[n] = uint32(len(names))

	edgeFrom := make([]uint32, 0, g.NumEdges())
	edgeTo := make([]uint32, 0, g.NumEdges())
	g.EachEdge(func(a, b *Node, _ float64) bool {
		edgeFrom = append(edgeFrom, a.ID)
		edgeTo = append(edgeTo, b.ID)
		return true
	})

	hdr := fileHeader{
		Version:   version,
		NumNodes:  n,
		NumEdges:  uint32(len(edgeFrom)),
		NameBytes: uint32(len(names)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Node data.
	if err := writeFloat64Slice(w, lat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, lon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeUint32Slice(w, nameOff); err != nil {
		return fmt.Errorf("write NameOffsets: %w", err)
	}
	if _, err := w.Write(names); err != nil {
		return fmt.Errorf("write Names: %w", err)
	}

	// Edges.
	if err := writeUint32Slice(w, edgeFrom); err != nil {
		return fmt.Errorf("write EdgeFrom: %w", err)
	}
	if err := writeUint32Slice(w, edgeTo); err != nil {
		return fmt.Errorf("write EdgeTo: %w", err)
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary loads a snapshot written by WriteBinary and rebuilds the graph.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}
	if hdr.NameBytes > maxNameBytes {
		return nil, fmt.Errorf("NameBytes %d exceeds limit %d", hdr.NameBytes, maxNameBytes)
	}

	lat, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	lon, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	nameOff, err := readUint32Slice(r, int(hdr.NumNodes+1))
	if err != nil {
		return nil, fmt.Errorf("read NameOffsets: %w", err)
	}
	names := make([]byte, hdr.NameBytes)
	if _, err := io.ReadFull(r, names); err != nil {
		return nil, fmt.Errorf("read Names: %w", err)
	}
	edgeFrom, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read EdgeFrom: %w", err)
	}
	edgeTo, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read EdgeTo: %w", err)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateOffsets(nameOff, hdr.NameBytes); err != nil {
		return nil, fmt.Errorf("name offsets invalid: %w", err)
	}

	in := &Input{Intersections: make([]Intersection, hdr.NumNodes)}
	for i := range hdr.NumNodes {
		in.Intersections[i] = Intersection{
			Name: string(names[nameOff[i]:nameOff[i+1]]),
			Lat:  lat[i],
			Lon:  lon[i],
		}
	}
	in.Roads = make([]Road, hdr.NumEdges)
	for i := range hdr.NumEdges {
		from, to := edgeFrom[i], edgeTo[i]
		if from >= hdr.NumNodes || to >= hdr.NumNodes {
			return nil, fmt.Errorf("edge %d references node out of range", i)
		}
		in.Roads[i] = Road{
			Name: fmt.Sprintf("edge %d", i),
			From: in.Intersections[from].Name,
			To:   in.Intersections[to].Name,
		}
	}

	return Build(in)
}

// validateOffsets checks that offsets are monotonic and end at total.
func validateOffsets(off []uint32, total uint32) error {
	if len(off) == 0 || off[0] != 0 {
		return fmt.Errorf("first offset must be 0")
	}
	for i := 1; i < len(off); i++ {
		if off[i] < off[i-1] {
			return fmt.Errorf("not monotonic at %d: %d < %d", i, off[i], off[i-1])
		}
	}
	if off[len(off)-1] != total {
		return fmt.Errorf("last offset %d != %d", off[len(off)-1], total)
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
