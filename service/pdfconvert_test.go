package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Khalil2008k/guild-contracts/config"
)

func pdfConfig(url string) *config.PDFConfig {
	return &config.PDFConfig{
		APIURL:         url,
		APIToken:       "test-token",
		TimeoutSeconds: 5,
	}
}

func TestPDFConvert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/convert" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Unexpected authorization header: %s", got)
		}

		var req convertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if !strings.Contains(req.HTML, "<html") {
			t.Error("Expected HTML document in request body")
		}
		if req.FileName != "contract.pdf" {
			t.Errorf("Unexpected file name: %s", req.FileName)
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer server.Close()

	svc := NewPDFConvertService(pdfConfig(server.URL))
	pdf, err := svc.Convert(context.Background(), "<html><body>doc</body></html>", "contract.pdf")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if string(pdf) != "%PDF-1.7 fake" {
		t.Errorf("Unexpected PDF bytes: %q", pdf)
	}
}

func TestPDFConvertAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(convertErrorResponse{Code: 422, Message: "document too large"})
	}))
	defer server.Close()

	svc := NewPDFConvertService(pdfConfig(server.URL))
	_, err := svc.Convert(context.Background(), "<html></html>", "contract.pdf")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "document too large") {
		t.Errorf("Expected API message in error, got %v", err)
	}
}

func TestPDFConvertWrongContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("not a pdf"))
	}))
	defer server.Close()

	svc := NewPDFConvertService(pdfConfig(server.URL))
	if _, err := svc.Convert(context.Background(), "<html></html>", "contract.pdf"); err == nil {
		t.Fatal("Expected error for non-PDF response")
	}
}

func TestPDFConvertEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
	}))
	defer server.Close()

	svc := NewPDFConvertService(pdfConfig(server.URL))
	if _, err := svc.Convert(context.Background(), "<html></html>", "contract.pdf"); err == nil {
		t.Fatal("Expected error for empty document")
	}
}
