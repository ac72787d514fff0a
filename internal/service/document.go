package service

import (
	"bytes"
	"os"
	"path/filepath"

	"labrag/internal/domain"
)

// LoadDocument reads the file at path into memory as an uploaded document.
func LoadDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	return NewDocument(filepath.Base(path), data), nil
}

// NewDocument wraps raw upload bytes.
func NewDocument(name string, data []byte) domain.Document {
	return domain.Document{Name: name, Reader: bytes.NewReader(data), Size: int64(len(data))}
}
