package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"facemark.io/infrastructure/logger"
)

// HTTPExtractor calls the inference sidecar's /embeddings endpoint. The
// sidecar runs the detector and recognition model; this client only
// enforces the vector contract on what comes back.
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExtractor builds an extractor against INFERENCE_URL.
func NewHTTPExtractor() *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: os.Getenv("INFERENCE_URL"),
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
	}
}

type extractRequest struct {
	Image string `json:"image"`
}

type extractResponse struct {
	Faces []struct {
		Embedding []float64 `json:"embedding"`
		Box       struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"box"`
	} `json:"faces"`
}

func (e *HTTPExtractor) Extract(ctx context.Context, frame []byte) ([]Face, error) {
	payload, err := json.Marshal(extractRequest{
		Image: base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Error("inference sidecar request failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Error("inference sidecar returned an error", logger.LoggerOptions{
			Key:  "statusCode",
			Data: resp.StatusCode,
		}, logger.LoggerOptions{
			Key:  "body",
			Data: string(body),
		})
		return nil, fmt.Errorf("inference sidecar returned status %d", resp.StatusCode)
	}

	var parsed extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	faces := make([]Face, 0, len(parsed.Faces))
	for _, f := range parsed.Faces {
		vector, err := NormaliseVector(f.Embedding)
		if err != nil {
			return nil, err
		}
		faces = append(faces, Face{
			Vector: vector,
			X:      f.Box.X,
			Y:      f.Box.Y,
			Width:  f.Box.Width,
			Height: f.Box.Height,
		})
	}
	return faces, nil
}
