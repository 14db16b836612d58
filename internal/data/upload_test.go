package data

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestLoadUpload(t *testing.T) {
	path := writeFile(t, "dummy.JPG", "\xff\xd8\xff\xe0jpeg")

	up, err := LoadUpload(path)
	if err != nil {
		t.Fatalf("LoadUpload: %v", err)
	}
	if !bytes.Equal(up.Content, []byte("\xff\xd8\xff\xe0jpeg")) {
		t.Errorf("content = %q", up.Content)
	}
	if up.Name != path {
		t.Errorf("name = %q, want %q", up.Name, path)
	}
}

func TestLoadUpload_Missing(t *testing.T) {
	_, err := LoadUpload(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
