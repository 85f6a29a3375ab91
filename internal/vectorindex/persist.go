package vectorindex

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/viant/ragvault/internal/apperrors"
)

const binMagic uint32 = 0x56454331 // "VEC1"

// SaveTo writes the index as vectors/index.bin: a fixed binary layout of
// (chunk id length, chunk id, dimension, float32 values) records, atomically
// swapped into place the way file-backed manifests are written elsewhere in
// this service.
func (idx *Index) SaveTo(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.PersistenceFailed("create directory", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return apperrors.PersistenceFailed("create temp file", err)
	}

	if err := binary.Write(f, binary.LittleEndian, binMagic); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("write magic", err)
	}
	count := uint32(len(idx.vectors))
	if err := binary.Write(f, binary.LittleEndian, count); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("write count", err)
	}
	for id, v := range idx.vectors {
		if err := writeRecord(f, id, v); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return apperrors.PersistenceFailed("write record", err)
		}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("sync", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("close", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.PersistenceFailed("rename", err)
	}
	return nil
}

func writeRecord(f *os.File, id string, v []float32) error {
	idBytes := []byte(id)
	if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
		return err
	}
	if _, err := f.Write(idBytes); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(v))); err != nil {
		return err
	}
	return binary.Write(f, binary.LittleEndian, v)
}

// LoadFrom returns a new index holding the records stored at path. A
// missing file is treated as an empty index, matching first-run behavior.
func LoadFrom(path string) (*Index, error) {
	idx := New()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, apperrors.PersistenceFailed("open "+path, err)
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
		return nil, apperrors.PersistenceFailed("read magic", err)
	}
	if magic != binMagic {
		return nil, apperrors.PersistenceFailed("bad magic in "+path, nil)
	}
	var count uint32
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, apperrors.PersistenceFailed("read count", err)
	}
	for i := uint32(0); i < count; i++ {
		id, v, err := readRecord(f)
		if err != nil {
			return nil, apperrors.PersistenceFailed("read record", err)
		}
		idx.vectors[id] = v
	}
	return idx, nil
}

func readRecord(f *os.File) (string, []float32, error) {
	var idLen uint32
	if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
		return "", nil, err
	}
	idBytes := make([]byte, idLen)
	if _, err := f.Read(idBytes); err != nil {
		return "", nil, err
	}
	var dim uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return "", nil, err
	}
	v := make([]float32, dim)
	if err := binary.Read(f, binary.LittleEndian, v); err != nil {
		return "", nil, err
	}
	return string(idBytes), v, nil
}
