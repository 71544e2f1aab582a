// Package embedding is the client for the face detection and embedding
// service: it posts a frame and gets back zero or more face embeddings
// with bounding boxes. The detector model itself lives behind the HTTP
// boundary; this package never interprets the vectors.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/quocbao/facegate/internal/identity"
)

const defaultServiceURL = "http://localhost:8000"

// Client computes face embeddings using the embedding server.
type Client struct {
	baseURL string
	maxSize int // frames larger than this are downscaled before upload, 0 disables
	client  *http.Client
}

// NewClient creates a new face embedding client.
func NewClient(baseURL string, maxSize int) *Client {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
		client:  &http.Client{},
	}
}

// faceDetection represents a single detected face in the service response.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse represents the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// DetectFaces posts one frame and returns the detected faces in service
// order. No detected face is an empty slice with a nil error. Undecodable
// frames are uploaded unchanged; the service reports zero faces for them.
func (c *Client) DetectFaces(ctx context.Context, image []byte) ([]identity.Detection, error) {
	if c.maxSize > 0 {
		if resized, err := ResizeImage(image, c.maxSize); err == nil {
			image = resized
		}
	}

	body, err := c.postMultipartImage(ctx, "/detect/faces", image)
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	detections := make([]identity.Detection, 0, len(resp.Faces))
	for _, face := range resp.Faces {
		if len(face.Embedding) == 0 {
			continue
		}
		detections = append(detections, identity.Detection{
			Embedding: face.Embedding,
			BBox:      face.BBox,
			Score:     face.DetScore,
		})
	}
	return detections, nil
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint. The part carries an explicit
// Content-Type header based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
