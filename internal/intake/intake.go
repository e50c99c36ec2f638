// Package intake accepts a single PDF document from the picker, a drop or the command line.
package intake

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// PDFMediaType is the only media type the intake accepts
const PDFMediaType = "application/pdf"

// DefaultMaxBytes is used when no upload limit is configured
const DefaultMaxBytes int64 = 20 << 20

// Source identifies how a file reached the intake
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
	SourceCLI    Source = "cli"
)

// ParseSource maps a form value to a Source, defaulting to the picker
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceDrop:
		return SourceDrop
	case SourceCLI:
		return SourceCLI
	default:
		return SourcePicker
	}
}

// Document is an accepted PDF held in memory
type Document struct {
	Name       string
	MediaType  string
	Content    []byte
	Source     Source
	ReceivedAt time.Time
	// Pages is zero when the page count could not be read
	Pages int
}

// Size returns the document size in bytes
func (d *Document) Size() int64 {
	return int64(len(d.Content))
}

// SizeLabel renders the size in megabytes with two decimals
func (d *Document) SizeLabel() string {
	return fmt.Sprintf("%.2f MB", float64(d.Size())/(1024*1024))
}

// PageCounter reports the number of pages in a PDF
type PageCounter interface {
	PageCount(content []byte) (int, error)
}

// Intake validates incoming files
type Intake struct {
	maxBytes int64
	pages    PageCounter
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an intake. pages may be nil, in which case page counts are not read.
func New(maxBytes int64, pages PageCounter, logger *zap.Logger) *Intake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{
		maxBytes: maxBytes,
		pages:    pages,
		logger:   logger,
		now:      time.Now,
	}
}

// MaxBytes returns the configured upload limit
func (in *Intake) MaxBytes() int64 {
	return in.maxBytes
}

// Accept validates a file by its declared media type and wraps it as a Document.
// Parameters and case of the media type are ignored.
func (in *Intake) Accept(name, declaredMediaType string, content []byte, src Source) (*Document, error) {
	if !IsPDF(declaredMediaType) {
		in.logger.Info("Rejected non-PDF file",
			zap.String("filename", name),
			zap.String("media_type", declaredMediaType),
			zap.String("source", string(src)))
		return nil, fmt.Errorf("%w: got %q", ErrNotPDF, declaredMediaType)
	}
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(content)) > in.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(content), in.maxBytes)
	}

	doc := &Document{
		Name:       filepath.Base(strings.TrimSpace(name)),
		MediaType:  PDFMediaType,
		Content:    content,
		Source:     src,
		ReceivedAt: in.now(),
	}

	if in.pages != nil {
		n, err := in.pages.PageCount(content)
		if err != nil {
			in.logger.Warn("Could not read page count", zap.String("filename", doc.Name), zap.Error(err))
		} else {
			doc.Pages = n
		}
	}

	in.logger.Info("File accepted",
		zap.String("filename", doc.Name),
		zap.Int64("size_bytes", doc.Size()),
		zap.Int("pages", doc.Pages),
		zap.String("source", string(src)))

	return doc, nil
}

// FromPath reads a file from disk, sniffing its media type from the content
func (in *Intake) FromPath(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > in.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), in.maxBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	detected := mimetype.Detect(content)
	return in.Accept(filepath.Base(path), detected.String(), content, SourceCLI)
}

// IsPDF reports whether a declared media type is application/pdf
func IsPDF(declared string) bool {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	return mediaType == PDFMediaType
}
