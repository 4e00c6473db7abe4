// Package upload is the boundary to the external image-hosting
// collaborator. The service only ever stores hosted URLs; inline
// base64 payloads are pushed out through an Uploader first.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/pkg/errors"
)

var reDataURI = regexp.MustCompile(`^data:image/[a-zA-Z]+;base64,`)

type ImageKind int

const (
	// HostedURL is an image already externalized: store as is.
	HostedURL ImageKind = iota
	// InlineImage is a base64 data URI awaiting externalization.
	InlineImage
)

type Image struct {
	Kind  ImageKind
	Value string
}

// Parse classifies a cover/logo value as already hosted or inline
// base64. This is the only place the data-URI prefix is sniffed.
func Parse(s string) Image {
	if reDataURI.MatchString(s) {
		return Image{Kind: InlineImage, Value: s}
	}
	return Image{Kind: HostedURL, Value: s}
}

type Uploader interface {
	// Upload externalizes a base64 data URI and returns the hosted
	// URL. A failed upload must surface as an error; callers never
	// substitute a fallback value.
	Upload(ctx context.Context, dataURI, folder string) (string, error)
}

// Client uploads to an HTTP object-storage endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) Upload(ctx context.Context, dataURI, folder string) (string, error) {
	if c.BaseURL == "" {
		return "", errors.New("upload: no endpoint configured")
	}

	body, err := json.Marshal(map[string]string{
		"data":   dataURI,
		"folder": folder,
	})
	if err != nil {
		return "", errors.Wrap(err, "upload: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "upload: new request")
	}
	req.Header.Set("content-type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "upload: send")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("upload: status %d", resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return "", errors.Wrap(err, "upload: parse response")
	}
	if result.URL == "" {
		return "", errors.New("upload: empty url in response")
	}
	return result.URL, nil
}

// Externalize resolves an incoming cover/logo value to its storable
// form: hosted URLs pass through, inline base64 goes through the
// uploader. Nil (absent) and empty (explicit clear) values are
// returned unchanged so callers keep their meaning apart.
func Externalize(ctx context.Context, up Uploader, value *string, folder string) (*string, error) {
	if value == nil || *value == "" {
		return value, nil
	}

	img := Parse(*value)
	if img.Kind == HostedURL {
		return &img.Value, nil
	}

	hosted, err := up.Upload(ctx, img.Value, folder)
	if err != nil {
		return nil, err
	}
	return &hosted, nil
}
