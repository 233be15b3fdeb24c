package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OGImagesBucket holds the share images served at /og-images/{name}.
const OGImagesBucket = "og-images"

// DefaultObjectMaxBytes bounds a single stored object.
const DefaultObjectMaxBytes int64 = 10 * 1024 * 1024 // 10MB

func (s *Store) objectsDir() string {
	return filepath.Join(s.Dir, objectsDirName)
}

// ObjectPath returns the on-disk path of bucket/name. Both parts must be
// single path elements.
func (s *Store) ObjectPath(bucket, name string) (string, error) {
	if err := validateObjectName("bucket", bucket); err != nil {
		return "", err
	}
	if err := validateObjectName("object", name); err != nil {
		return "", err
	}
	return filepath.Join(s.objectsDir(), bucket, name), nil
}

// PutObject writes r to bucket/name, replacing any existing object.
func (s *Store) PutObject(bucket, name string, r io.Reader) (int64, error) {
	path, err := s.ObjectPath(bucket, name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+name+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	n, err := io.Copy(tmp, io.LimitReader(r, DefaultObjectMaxBytes+1))
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, err
	}
	if n > DefaultObjectMaxBytes {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("objects: %s/%s too large (max %d bytes)", bucket, name, DefaultObjectMaxBytes)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return 0, err
	}
	return n, nil
}

// OpenObject opens bucket/name for reading. Missing objects wrap ErrNotFound.
func (s *Store) OpenObject(bucket, name string) (*os.File, error) {
	path, err := s.ObjectPath(bucket, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, name, ErrNotFound)
	}
	return f, err
}

// RemoveObject deletes bucket/name. Removing a missing object is not an error.
func (s *Store) RemoveObject(bucket, name string) error {
	path, err := s.ObjectPath(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func validateObjectName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("objects: missing %s name", kind)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("objects: invalid %s name: %q", kind, name)
	}
	return nil
}
