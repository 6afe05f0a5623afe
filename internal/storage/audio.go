package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SavedAudio describes an uploaded recording persisted to disk.
type SavedAudio struct {
	ID   string
	Path string
	Size int64
}

// Store writes uploaded recordings into a single directory. Attempt
// metadata lives in the repository; the store only owns the bytes.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded file under a fresh recording ID and returns
// where it landed. The client filename is reduced to its base name so it
// can never escape the upload directory.
func (s *Store) Save(file *multipart.FileHeader) (*SavedAudio, error) {
	id := fmt.Sprintf("rec_%d", time.Now().UnixNano())
	dst := filepath.Join(s.dir, id+"_"+filepath.Base(file.Filename))

	if err := saveMultipartFile(file, dst); err != nil {
		return nil, fmt.Errorf("save audio file: %w", err)
	}

	var size int64
	if info, err := os.Stat(dst); err == nil {
		size = info.Size()
	}

	return &SavedAudio{ID: id, Path: dst, Size: size}, nil
}

// Remove deletes a previously saved recording. Paths outside the upload
// directory are refused.
func (s *Store) Remove(path string) error {
	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s: outside upload directory", path)
	}
	return os.Remove(absPath)
}

func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.ReadFrom(src)
	return err
}
