package service

import (
	"time"

	"github.com/garyjia/mrsl-intake/internal/domain/entity"
	domainwf "github.com/garyjia/mrsl-intake/internal/domain/workflow"
	"github.com/garyjia/mrsl-intake/internal/intake"
	"github.com/garyjia/mrsl-intake/internal/review"
)

// FileInfo describes the selected document without its content
type FileInfo struct {
	Name      string        `json:"name"`
	MediaType string        `json:"media_type"`
	SizeBytes int64         `json:"size_bytes"`
	SizeLabel string        `json:"size_label"`
	Pages     int           `json:"pages,omitempty"`
	Source    intake.Source `json:"source"`
}

func fileInfo(doc *intake.Document) *FileInfo {
	if doc == nil {
		return nil
	}
	return &FileInfo{
		Name:      doc.Name,
		MediaType: doc.MediaType,
		SizeBytes: doc.Size(),
		SizeLabel: doc.SizeLabel(),
		Pages:     doc.Pages,
		Source:    doc.Source,
	}
}

// Snapshot is an immutable view of the session at one point in time
type Snapshot struct {
	SessionID    string                   `json:"session_id"`
	State        domainwf.State           `json:"state"`
	IsExtracting bool                     `json:"is_extracting"`
	IsSubmitting bool                     `json:"is_submitting"`
	File         *FileInfo                `json:"file"`
	Record       *entity.ExtractionRecord `json:"record"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// HasRecord reports whether a working record is present
func (s Snapshot) HasRecord() bool {
	return s.Record != nil
}

// Form returns the review form over the snapshot's record
func (s Snapshot) Form() review.Form {
	if s.Record == nil {
		return review.NewForm(entity.ExtractionRecord{})
	}
	return review.NewForm(*s.Record)
}
