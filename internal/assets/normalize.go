package assets

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// Normalize downscales images larger than maxDimension on either side and
// re-encodes them in their original format. Smaller images are returned as is.
func Normalize(data []byte, maxDimension int) ([]byte, error) {
	if maxDimension <= 0 {
		return data, nil
	}

	cfg, formatName, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return data, nil
	}

	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
