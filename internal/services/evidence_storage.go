package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorage persists an uploaded object and returns its public URL.
type FileStorage interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// EvidenceUpload is one multipart file attached to a complaint.
type EvidenceUpload struct {
	FileType    string
	Description string
	FileName    string
	ContentType string
	Data        []byte
}

// evidenceKey lays evidence out by upload day:
// complaints/evidence/YYYY/MM/DD/<uuid><ext>.
func evidenceKey(at time.Time, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return "complaints/evidence/" + at.UTC().Format("2006/01/02") + "/" + uuid.NewString() + ext
}
