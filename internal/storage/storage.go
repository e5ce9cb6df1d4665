// Package storage keeps collateral files on local disk.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
)

// AllowedMimeTypes lists the content types accepted as collateral.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// StoredFile describes a file written by Save.
type StoredFile struct {
	StoredName string
	MimeType   string
	Size       int64
}

type DiskStore struct {
	dir      string
	maxBytes int64
}

func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save sniffs the content type of r, rejects disallowed or oversized files and
// writes the rest under a random prefix followed by the original file name.
func (s *DiskStore) Save(originalName string, r io.Reader) (*StoredFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, customError.WrapFileTooLarge(s.maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !allowed(mtype) {
		return nil, customError.WrapFileTypeNotAllowed(mtype.String())
	}

	prefix, err := randomHex(8)
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	storedName := prefix + "_" + cleanName(originalName)

	if err := os.WriteFile(s.path(storedName), data, 0o644); err != nil {
		return nil, customError.WrapStorageError(err)
	}

	return &StoredFile{
		StoredName: storedName,
		MimeType:   mtype.String(),
		Size:       int64(len(data)),
	}, nil
}

// Open returns a reader for a stored file. The caller closes it.
func (s *DiskStore) Open(storedName string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(storedName))
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	return f, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *DiskStore) Remove(storedName string) error {
	err := os.Remove(s.path(storedName))
	if err != nil && !os.IsNotExist(err) {
		return customError.WrapStorageError(err)
	}
	return nil
}

func (s *DiskStore) path(storedName string) string {
	return filepath.Join(s.dir, filepath.Base(storedName))
}

func allowed(mtype *mimetype.MIME) bool {
	for _, m := range AllowedMimeTypes {
		if mtype.Is(m) {
			return true
		}
	}
	return false
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == ':' {
			return '_'
		}
		return r
	}, name)
	if name == "." || name == "" {
		return "file"
	}
	return name
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
