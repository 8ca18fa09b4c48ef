package media

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxDimension bounds the width and height of stored images.
const MaxDimension = 1600

// Optimize shrinks images larger than MaxDimension on either side, keeping the
// original format. Data that cannot be decoded or re-encoded is returned as is.
func Optimize(data []byte, name string) []byte {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return data
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data
	}

	b := img.Bounds()
	if b.Dx() <= MaxDimension && b.Dy() <= MaxDimension {
		return data
	}

	resized := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return data
	}
	return buf.Bytes()
}

// ContentType prefers the declared type and falls back to the file extension.
func ContentType(declared, name string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
