package flat

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	indexFileName  = "index.bin"
	chunksFileName = "chunks.json"

	formatVersion uint32 = 1
)

var magic = [4]byte{'D', 'Q', 'I', 'X'}

// errCorruptIndex marks an index directory whose files disagree or fail
// to parse.
var errCorruptIndex = errors.New("corrupt index")

// header precedes the vectors in index.bin. All fields are little-endian.
type header struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
	Dim     uint32
}

// chunkRecord is one entry of chunks.json.
type chunkRecord struct {
	Text     string               `json:"text"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

// manifest is the content of chunks.json.
type manifest struct {
	FileID  string        `json:"file_id"`
	Model   string        `json:"model"`
	BuiltAt time.Time     `json:"built_at"`
	Chunks  []chunkRecord `json:"chunks"`
}

func writeVectors(path string, vectors [][]float32) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	var dim int
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	w := bufio.NewWriter(f)
	h := header{Magic: magic, Version: formatVersion, Count: uint32(len(vectors)), Dim: uint32(dim)}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		f.Close()
		return err
	}
	for i, v := range vectors {
		if len(v) != dim {
			f.Close()
			return fmt.Errorf("vector %d has %d dimensions, want %d", i, len(v), dim)
		}
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readVectors(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", errCorruptIndex, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", errCorruptIndex, h.Magic[:])
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errCorruptIndex, h.Version)
	}

	flat := make([]float32, int(h.Count)*int(h.Dim))
	if err := binary.Read(r, binary.LittleEndian, flat); err != nil {
		return nil, fmt.Errorf("%w: reading vectors: %v", errCorruptIndex, err)
	}
	if _, err := r.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", errCorruptIndex)
	}

	vectors := make([][]float32, h.Count)
	for i := range vectors {
		start := i * int(h.Dim)
		vectors[i] = flat[start : start+int(h.Dim) : start+int(h.Dim)]
	}
	return vectors, nil
}

func writeManifest(path string, m *manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptIndex, err)
	}
	return &m, nil
}
