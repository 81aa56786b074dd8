package retrieval

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/catalog"
)

// ErrIndexUnavailable is returned by Load when the artifacts are missing or unreadable.
var ErrIndexUnavailable = errors.New("index unavailable")

const (
	vectorsSuffix = ".vec"
	entriesSuffix = ".entries.json"
	formatVersion = uint32(2)
)

var magic = [4]byte{'S', 'N', 'I', 'X'}

type vectorsHeader struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
	Dim     uint32
}

// savedEntries is the entries artifact. Embedder names the model that wrote
// the vectors.
type savedEntries struct {
	Embedder string           `json:"embedder"`
	Entries  []*catalog.Entry `json:"entries"`
}

// Paths returns the two artifact paths for prefix.
func Paths(prefix string) (vectors, entries string) {
	return prefix + vectorsSuffix, prefix + entriesSuffix
}

// Save writes the vectors and the parallel entry list next to each other.
func (idx *Index) Save(prefix string) error {
	s := idx.current()
	if s == nil || len(s.entries) == 0 {
		return ErrEmptyCatalog
	}

	vecPath, entPath := Paths(prefix)
	if dir := filepath.Dir(vecPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}

	if err := writeAtomic(vecPath, func(w io.Writer) error { return writeVectors(w, s) }); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := writeAtomic(entPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		return enc.Encode(savedEntries{Embedder: EmbedderName(idx.embedder), Entries: s.entries})
	}); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}

	idx.logger.Info("index saved", zap.String("prefix", prefix), zap.Int("entries", len(s.entries)))
	return nil
}

// Load replaces the index with the saved artifacts. Both files must exist and
// agree with each other, with the embedder and, when current is not nil, with
// the catalog they are loaded for. Otherwise the current index is kept and an
// error wrapping ErrIndexUnavailable is returned. After a successful load,
// hits point at the entries of current.
func (idx *Index) Load(prefix string, current []*catalog.Entry) error {
	vecPath, entPath := Paths(prefix)

	s, err := readVectors(vecPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	data, err := os.ReadFile(entPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	var saved savedEntries
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("%w: decode entries: %v", ErrIndexUnavailable, err)
	}
	if len(saved.Entries) != len(s.vectors) {
		return fmt.Errorf("%w: %d entries for %d vectors", ErrIndexUnavailable, len(saved.Entries), len(s.vectors))
	}
	if want := idx.embedder.Dimensions(); want > 0 && want != s.dim {
		return fmt.Errorf("%w: saved dimensions %d, embedder produces %d", ErrIndexUnavailable, s.dim, want)
	}
	if want := EmbedderName(idx.embedder); saved.Embedder != want {
		return fmt.Errorf("%w: saved by embedder %q, configured %q", ErrIndexUnavailable, saved.Embedder, want)
	}

	entries := saved.Entries
	if current != nil {
		same, err := sameEntries(saved.Entries, current)
		if err != nil {
			return fmt.Errorf("%w: compare entries: %v", ErrIndexUnavailable, err)
		}
		if !same {
			return fmt.Errorf("%w: saved entries do not match the catalog", ErrIndexUnavailable)
		}
		entries = make([]*catalog.Entry, len(current))
		copy(entries, current)
	}

	s.entries = entries
	idx.swap(s)
	idx.logger.Info("index loaded", zap.String("prefix", prefix), zap.Int("entries", len(entries)))
	return nil
}

// sameEntries reports whether both lists hold the same records in the same order.
func sameEntries(a, b []*catalog.Entry) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	left, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(left, right), nil
}

func writeVectors(w io.Writer, s *snapshot) error {
	bw := bufio.NewWriter(w)
	header := vectorsHeader{Magic: magic, Version: formatVersion, Count: uint32(len(s.vectors)), Dim: uint32(s.dim)}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return err
	}
	for _, v := range s.vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readVectors(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header vectorsHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header.Magic != magic {
		return nil, errors.New("not an index file")
	}
	if header.Version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", header.Version)
	}
	if header.Count == 0 || header.Dim == 0 {
		return nil, errors.New("empty index file")
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	expected := int64(binary.Size(header)) + int64(header.Count)*int64(header.Dim)*4
	if info.Size() != expected {
		return nil, fmt.Errorf("file size %d, expected %d", info.Size(), expected)
	}

	vectors := make([][]float32, header.Count)
	for i := range vectors {
		vec := make([]float32, header.Dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return &snapshot{dim: int(header.Dim), vectors: vectors}, nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
