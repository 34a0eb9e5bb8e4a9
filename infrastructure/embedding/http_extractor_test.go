package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sidecarResponse(t *testing.T, count int) []byte {
	t.Helper()
	type box struct{ X, Y, Width, Height int }
	type face struct {
		Embedding []float64 `json:"embedding"`
		Box       box       `json:"box"`
	}
	faces := []face{}
	for i := 0; i < count; i++ {
		vector := make([]float64, Dimension)
		vector[i] = 3.0
		faces = append(faces, face{Embedding: vector, Box: box{Width: 50 + i, Height: 50}})
	}
	raw, err := json.Marshal(map[string]any{"faces": faces})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestHTTPExtractorExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("sidecar path = %s, want /embeddings", r.URL.Path)
		}
		w.Write(sidecarResponse(t, 2))
	}))
	defer server.Close()

	extractor := NewHTTPExtractor()
	extractor.baseURL = server.URL

	faces, err := extractor.Extract(context.Background(), []byte{0x01})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("Extract() returned %d faces, want 2", len(faces))
	}
	// vectors come back unit-norm regardless of the sidecar's scale
	sumSq := 0.0
	for _, v := range faces[0].Vector {
		sumSq += v * v
	}
	if diff := sumSq - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Extract() vector norm² = %f, want 1", sumSq)
	}
}

func TestHTTPExtractorNoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"faces":[]}`))
	}))
	defer server.Close()

	extractor := NewHTTPExtractor()
	extractor.baseURL = server.URL

	faces, err := extractor.Extract(context.Background(), []byte{0x01})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(faces) != 0 {
		t.Errorf("Extract() returned %d faces, want 0", len(faces))
	}
}

func TestHTTPExtractorSidecarFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := NewHTTPExtractor()
	extractor.baseURL = server.URL

	if _, err := extractor.Extract(context.Background(), []byte{0x01}); err == nil {
		t.Error("Extract() error = nil, want sidecar failure")
	}
}
