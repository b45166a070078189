package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

// maxResponseBytes bounds the JSON body accepted from a remote engine.
const maxResponseBytes = 8 << 20

// Remote posts PNG-encoded frames to an HTTP recognition service and decodes
// the JSON structured text it answers with.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates a remote backend for endpoint. A nil client means
// http.DefaultClient.
func NewRemote(endpoint string, client *http.Client) (*Remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must use http or https", endpoint)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{endpoint: u.String(), client: client}, nil
}

func newRemote(cfg Config) (Recognizer, error) {
	return NewRemote(cfg.Endpoint, &http.Client{Timeout: cfg.Timeout})
}

// Recognize implements Recognizer.
func (r *Remote) Recognize(ctx context.Context, img image.Image) (*ocrtext.Result, error) {
	if img == nil {
		return nil, errors.New("remote: nil image")
	}

	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote recognize: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote recognize: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out ocrtext.Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
