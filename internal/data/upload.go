package data

import (
	"fmt"
	"os"
)

// Upload is a binary fixture held in memory and reused for every request.
type Upload struct {
	Name    string
	Content []byte
}

// LoadUpload reads the whole file at path.
func LoadUpload(path string) (*Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading upload fixture: %w", err)
	}
	return &Upload{Name: path, Content: content}, nil
}
