package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore is a file-per-record implementation: one JSON file named
// <subject>_<code>.json per booking, under a single directory.
type FileStore struct{ dir string }

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("bookings: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

type fileRecord struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *FileStore) Put(_ context.Context, subjectName, code string) error {
	b, err := json.MarshalIndent(fileRecord{Name: subjectName, Code: code}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(subjectName, code), b, 0o644)
}

func (s *FileStore) FindByName(_ context.Context, subjectName string) (string, error) {
	prefix := fileKey(subjectName) + "_"
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		var rec fileRecord
		b, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(b, &rec); err != nil {
			continue
		}
		if strings.EqualFold(rec.Name, subjectName) {
			return rec.Code, nil
		}
	}
	return "", ErrNotFound
}

func (s *FileStore) Delete(_ context.Context, subjectName, code string) (bool, error) {
	path := s.path(subjectName, code)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) List(_ context.Context) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var rec fileRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			continue
		}
		created := time.Time{}
		if info, err := e.Info(); err == nil {
			created = info.ModTime()
		}
		out = append(out, Record{SubjectName: rec.Name, Code: rec.Code, CreatedAt: created})
	}
	return out, nil
}

func (s *FileStore) path(subjectName, code string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", fileKey(subjectName), code))
}

func fileKey(subjectName string) string {
	return strings.ReplaceAll(strings.ToLower(subjectName), " ", "_")
}
