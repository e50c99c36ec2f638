// Package pdf inspects and rasterizes PDF documents with MuPDF.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// JPEGQuality is the encoder quality used for rendered pages
const JPEGQuality = 85

// Renderer reads page metadata and page images out of an in-memory PDF
type Renderer interface {
	PageCount(content []byte) (int, error)
	RenderJPEG(content []byte, maxPages int) ([][]byte, error)
}

// Reader is the MuPDF-backed Renderer
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new PDF reader
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// PageCount opens the document and returns its number of pages
func (r *Reader) PageCount(content []byte) (int, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// RenderJPEG renders up to maxPages pages as JPEG images.
// maxPages <= 0 renders every page. Pages that fail to render are skipped.
func (r *Reader) RenderJPEG(content []byte, maxPages int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	r.logger.Debug("Rendering PDF pages",
		zap.Int("total_pages", doc.NumPage()),
		zap.Int("rendered_pages", pageCount))

	images := make([][]byte, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			r.logger.Warn("Failed to extract page as image",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		encoded, err := encodeJPEG(img)
		if err != nil {
			r.logger.Warn("Failed to encode page to JPEG",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		images = append(images, encoded)
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("no pages rendered from PDF")
	}
	return images, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
