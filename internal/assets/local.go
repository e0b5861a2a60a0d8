package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore keeps assets on the local filesystem below root.
type LocalStore struct {
	root string
	log  *zap.Logger
}

func NewLocalStore(root string, log *zap.Logger) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("asset dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root, log: log.Named("assets.local")}, nil
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Root() string { return s.root }

// Put writes through a temp file and renames it into place so readers never
// observe a partial image.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]Object, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(strings.TrimSuffix(prefix, "/")))
	var objects []Object
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Key:     filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}
