package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultRemoteURL = "https://translate.googleapis.com/translate_a/single"

// Remote is a machine translation backend.
type Remote interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// GoogleClient calls the public gtx translate endpoint.
type GoogleClient struct {
	http    *resty.Client
	baseURL string
}

func NewGoogleClient(baseURL string, timeout time.Duration) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultRemoteURL
	}
	return &GoogleClient{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; khedutbazaar/1.0)"),
		baseURL: baseURL,
	}
}

func (c *GoogleClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     source,
			"tl":     target,
			"dt":     "t",
			"q":      text,
		}).
		Get(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	if r.IsError() {
		return "", fmt.Errorf("translate request: status %d", r.StatusCode())
	}
	return parseGoogleResponse(r.Body())
}

// parseGoogleResponse joins the translated segments of a gtx response, whose
// first element is a list of [translated, original, ...] tuples.
func parseGoogleResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(outer) == 0 {
		return "", errors.New("empty translate response")
	}

	var segments [][]interface{}
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("decode translate segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("translate response has no text")
	}
	return b.String(), nil
}
