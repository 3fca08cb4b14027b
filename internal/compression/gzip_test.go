package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"tag":"room","x":0,"y":0,"w":10,"h":10}`, 200))

	compressed, err := Compress(payload)
	if err != nil {
		t.Fatalf("Compress() failed: %v", err)
	}
	if len(compressed) >= len(payload) {
		t.Errorf("Expected repetitive payload to shrink: %d -> %d bytes", len(payload), len(compressed))
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() failed: %v", err)
	}
	if !bytes.Equal(decompressed, payload) {
		t.Error("Round trip did not preserve payload")
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	if _, err := Decompress([]byte("not gzip data")); err == nil {
		t.Error("Expected error for non-gzip input")
	}
}

func TestGzipMiddleware(t *testing.T) {
	body := strings.Repeat("chunk data ", 100)
	handler := GzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))

	req := httptest.NewRequest("GET", "/api/levels/1", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Expected gzip Content-Encoding, got %q", rr.Header().Get("Content-Encoding"))
	}

	reader, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("Response is not gzip: %v", err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read gzip body: %v", err)
	}
	if string(decoded) != body {
		t.Error("Decompressed body does not match original")
	}
}

func TestGzipMiddlewarePassthrough(t *testing.T) {
	body := "plain response"
	handler := GzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}))

	req := httptest.NewRequest("GET", "/api/levels/1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "" {
		t.Errorf("Expected no Content-Encoding, got %q", rr.Header().Get("Content-Encoding"))
	}
	if rr.Body.String() != body {
		t.Errorf("Expected body %q, got %q", body, rr.Body.String())
	}
}
