package assets

import (
	"context"
	"fmt"

	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/smallbiznis/dashboard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type WriterParams struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	Store   Store
	Uploads *config.UploadPolicyHolder
	Metrics *metrics.Metrics `optional:"true"`
}

// Writer stores customer images and returns their public path.
type Writer struct {
	log     *zap.Logger
	store   Store
	uploads *config.UploadPolicyHolder
	metrics *metrics.Metrics
	prefix  string
}

func NewWriter(p WriterParams) *Writer {
	return &Writer{
		log:     p.Log.Named("assets.writer"),
		store:   p.Store,
		uploads: p.Uploads,
		metrics: p.Metrics,
		prefix:  p.Config.Assets.PublicPrefix,
	}
}

// SaveCustomerImage normalises the image, writes it under a fresh unique key
// and returns the path the row should reference.
func (w *Writer) SaveCustomerImage(ctx context.Context, filename string, data []byte, contentType, ext string) (string, error) {
	normalized, err := Normalize(data, w.uploads.Get().MaxDimension)
	if err != nil {
		w.metrics.RecordAssetWrite(ctx, w.store.Backend(), "rejected")
		return "", fmt.Errorf("normalize image: %w", err)
	}

	key := UniqueName(filename, ext)
	if err := w.store.Put(ctx, key, normalized, contentType); err != nil {
		w.metrics.RecordAssetWrite(ctx, w.store.Backend(), "error")
		w.log.Error("asset write failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("store image: %w", err)
	}

	w.metrics.RecordAssetWrite(ctx, w.store.Backend(), "success")
	w.log.Debug("asset stored", zap.String("key", key), zap.Int("bytes", len(normalized)))
	return PublicPath(w.prefix, key), nil
}
