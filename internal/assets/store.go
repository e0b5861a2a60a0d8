package assets

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Object is one stored asset.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store persists uploaded binary assets under slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	Backend() string
}

var (
	ErrInvalidKey   = errors.New("invalid_key")
	ErrEmptyPayload = errors.New("empty_payload")
)
