package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Khalil2008k/guild-contracts/config"
)

// PDFConvertService is the client for the external HTML-to-PDF conversion
// service. It sends the document HTML and receives the PDF bytes back.
type PDFConvertService struct {
	config     *config.PDFConfig
	httpClient *http.Client
}

// convertRequest is the conversion API request body
type convertRequest struct {
	HTML     string `json:"html"`
	FileName string `json:"file_name,omitempty"`
}

// convertErrorResponse is returned by the API on failure
type convertErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func NewPDFConvertService(cfg *config.PDFConfig) *PDFConvertService {
	return &PDFConvertService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Convert sends HTML to the conversion service and returns the PDF bytes.
func (s *PDFConvertService) Convert(ctx context.Context, html, fileName string) ([]byte, error) {
	reqBody := convertRequest{
		HTML:     html,
		FileName: fileName,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/v1/convert", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr convertErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("PDF API error: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("PDF API error: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "pdf") {
		return nil, fmt.Errorf("PDF API returned unexpected content type %q", contentType)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("PDF API returned empty document")
	}

	return body, nil
}
