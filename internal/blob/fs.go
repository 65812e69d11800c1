package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// fsStore keeps documents as files under a root directory. A sidecar file per
// document records the content type.
type fsStore struct {
	root string
}

const contentTypeSuffix = ".content-type"

func newFSStore(root string) (*fsStore, error) {
	if root == "" {
		return nil, errors.New("blob directory required for fs driver")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &fsStore{root: root}, nil
}

func (s *fsStore) path(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *fsStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob parent: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create upload temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store blob: %w", err)
	}

	if contentType != "" {
		if err := os.WriteFile(path+contentTypeSuffix, []byte(contentType), 0o644); err != nil {
			return fmt.Errorf("record content type: %w", err)
		}
	}
	return nil
}

func (s *fsStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("blob %s: %w", key, ErrNotFound)
		}
		return nil, "", fmt.Errorf("open blob: %w", err)
	}
	contentType := ""
	if raw, err := os.ReadFile(path + contentTypeSuffix); err == nil {
		contentType = string(raw)
	}
	return file, contentType, nil
}

func (s *fsStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blob %s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	_ = os.Remove(path + contentTypeSuffix)
	return nil
}
