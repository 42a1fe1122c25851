package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Khalil2008k/guild-contracts/model"
)

// HTMLConverter turns document HTML into PDF bytes.
type HTMLConverter interface {
	Convert(ctx context.Context, html, fileName string) ([]byte, error)
}

// ArtifactStorage persists export artifacts and hands out share links.
type ArtifactStorage interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
}

// ExportResult identifies a stored PDF artifact.
type ExportResult struct {
	ObjectName string `json:"object_name"`
	ShareURL   string `json:"share_url"`
	Size       int    `json:"size"`
}

// ExportService renders a contract to PDF and stores the artifact. Failures
// of the converter or the storage wrap model.ErrExport.
type ExportService struct {
	renderer  *DocumentRenderer
	converter HTMLConverter
	storage   ArtifactStorage
}

func NewExportService(renderer *DocumentRenderer, converter HTMLConverter, storage ArtifactStorage) *ExportService {
	return &ExportService{
		renderer:  renderer,
		converter: converter,
		storage:   storage,
	}
}

// ExportPDF renders the contract in the requested language, converts it, and
// uploads the PDF under the contract's prefix. Empty rule lists render as
// empty sections; they never fail the export.
func (s *ExportService) ExportPDF(ctx context.Context, c *model.Contract, lang string) (*ExportResult, error) {
	html, err := s.renderer.RenderHTML(c, lang)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contract-%s-%s.pdf", c.ID, lang)
	pdf, err := s.converter.Convert(ctx, html, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExport, err)
	}

	objectName := fmt.Sprintf("contracts/%s/%s-%s.pdf", c.ID, lang, time.Now().UTC().Format("20060102T150405Z"))
	if err := s.storage.UploadBytes(ctx, objectName, pdf, "application/pdf"); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExport, err)
	}

	shareURL, err := s.storage.GetPresignedURL(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExport, err)
	}

	return &ExportResult{
		ObjectName: objectName,
		ShareURL:   shareURL,
		Size:       len(pdf),
	}, nil
}
