package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/config"
)

func TestNewExtractor_Local(t *testing.T) {
	ext, err := NewExtractor(config.OCRConfig{Provider: "local", PdfToTextPath: "/usr/bin/pdftotext"})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ext)
}

func TestNewExtractor_EmptyProviderDefaultsToLocal(t *testing.T) {
	ext, err := NewExtractor(config.OCRConfig{})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ext)
}

func TestNewExtractor_MistralMissingKey(t *testing.T) {
	_, err := NewExtractor(config.OCRConfig{Provider: "mistral"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral provider requires ocr.mistral_key")
}

func TestNewExtractor_Mistral(t *testing.T) {
	ext, err := NewExtractor(config.OCRConfig{Provider: "mistral", MistralKey: "test-key"})
	require.NoError(t, err)
	assert.IsType(t, &MistralOCR{}, ext)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := NewExtractor(config.OCRConfig{Provider: "tesseract"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "tesseract"`)
}

func TestNewPdfToText_DefaultBin(t *testing.T) {
	assert.Equal(t, "pdftotext", NewPdfToText("").bin)
	assert.Equal(t, "/custom/pdftotext", NewPdfToText("/custom/pdftotext").bin)
}

func TestPdfToText_ExtractText(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "pdftotext")
	script := "#!/bin/sh\necho 'Unit    Tenant    Rent'\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))

	p := NewPdfToText(bin)
	text, err := p.ExtractText(context.Background(), filepath.Join(dir, "roll.pdf"))
	require.NoError(t, err)
	assert.Contains(t, text, "Unit    Tenant    Rent")
}

func TestPdfToText_ExtractText_MissingBinary(t *testing.T) {
	p := NewPdfToText("/nonexistent/pdftotext")
	_, err := p.ExtractText(context.Background(), "/tmp/roll.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr: pdftotext")
}

func TestNewMistralOCR_Defaults(t *testing.T) {
	m := NewMistralOCR("key", "")
	assert.Equal(t, defaultMistralModel, m.model)
	assert.Equal(t, mistralOCRURL, m.endpoint)

	m = NewMistralOCR("key", "custom-model")
	assert.Equal(t, "custom-model", m.model)
}

func writeDummyPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roll.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 rent roll"), 0644))
	return path
}

func TestMistralOCR_ExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req mistralRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "document_url", req.Document.Type)
		assert.Contains(t, req.Document.DocumentURL, "data:application/pdf;base64,")

		resp := mistralResponse{Pages: []mistralPage{
			{Index: 0, Markdown: "| Unit | Tenant |"},
			{Index: 1, Markdown: "| 101 | Acme |"},
		}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	defer srv.Close()

	m := &MistralOCR{key: "test-key", model: "test-model", endpoint: srv.URL, client: srv.Client()}

	text, err := m.ExtractText(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)
	assert.Equal(t, "| Unit | Tenant |\n\n| 101 | Acme |", text)
}

func TestMistralOCR_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	m := &MistralOCR{key: "bad-key", model: "test-model", endpoint: srv.URL, client: srv.Client()}

	_, err := m.ExtractText(context.Background(), writeDummyPDF(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral returned status 401")
}

func TestMistralOCR_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer srv.Close()

	m := &MistralOCR{key: "test-key", model: "test-model", endpoint: srv.URL, client: srv.Client()}

	_, err := m.ExtractText(context.Background(), writeDummyPDF(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mistral response")
}

func TestMistralOCR_EmptyPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mistralResponse{}) //nolint:errcheck
	}))
	defer srv.Close()

	m := &MistralOCR{key: "test-key", model: "test-model", endpoint: srv.URL, client: srv.Client()}

	text, err := m.ExtractText(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestMistralOCR_FileNotFound(t *testing.T) {
	m := NewMistralOCR("key", "")
	_, err := m.ExtractText(context.Background(), "/nonexistent/roll.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr: read")
}
