// Package client is a Go client for the API64 HTTP interface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/antmrlt/API64/core"
	"github.com/antmrlt/API64/payload"
)

// ErrClient marks failures that happened on the client side, before or
// while talking to the gateway.
var ErrClient = errors.New("api64 client")

// Error is a failure response returned by the gateway.
type Error struct {
	StatusCode  int    `json:"code"`
	Message     string `json:"error"`
	Description string `json:"description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("response %d: %s", e.StatusCode, e.Message)
}

// Is maps the status code onto the error kinds of the core package so that
// callers can use errors.Is(err, core.ErrAuth) and friends.
func (e *Error) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusForbidden:
		return target == core.ErrAuth
	case http.StatusNotFound:
		return target == core.ErrNotFound
	case http.StatusBadRequest:
		return target == core.ErrValidation
	}
	return false
}

// Upload is the outcome of a successful upload.
type Upload struct {
	Name   string
	URL    string
	SHA256 string
	Size   int64
}

// Options configures a Client.
type Options struct {
	// HTTPClient performs the requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to one API64 gateway.
type Client struct {
	addr   string
	apiKey string
	client *http.Client
}

// New returns a Client for the gateway at addr (scheme://host[:port])
// authenticating uploads with apiKey.
func New(addr, apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{HTTPClient: http.DefaultClient}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		addr:   strings.TrimRight(addr, "/"),
		apiKey: apiKey,
		client: opts.HTTPClient,
	}
}

type uploadBody struct {
	ContentType  string `json:"content_type"`
	Base64String string `json:"base64_string"`
	SHA256       bool   `json:"sha256,omitempty"`
}

type uploadResponse struct {
	Message    string `json:"message"`
	FileURL    string `json:"file_url"`
	FileSHA256 string `json:"file_sha256"`
	Size       int64  `json:"size"`
}

// Upload base64-encodes the content of src and stores it under a generated
// name. With wantDigest the gateway also returns the SHA-256 of the bytes.
func (c *Client) Upload(ctx context.Context, contentType string, src io.Reader, wantDigest bool) (*Upload, error) {
	if contentType == "" {
		return nil, fmt.Errorf("%w: empty content type", ErrClient)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrClient)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: reading source: %w", ErrClient, err)
	}

	body, err := json.Marshal(uploadBody{
		ContentType:  contentType,
		Base64String: payload.Encode(data),
		SHA256:       wantDigest,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+"/upload", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.apiKey)

	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var r uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrClient, err)
	}

	return &Upload{
		Name:   nameFromURL(r.FileURL),
		URL:    r.FileURL,
		SHA256: r.FileSHA256,
		Size:   r.Size,
	}, nil
}

// Download returns the raw bytes stored under name. The caller must close
// the returned reader.
func (c *Client) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrClient)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addr+"/uploads/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}

	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		defer res.Body.Close()

		rErr := &Error{}
		if err := json.NewDecoder(res.Body).Decode(rErr); err != nil {
			return nil, &Error{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		rErr.StatusCode = res.StatusCode
		return nil, rErr
	}

	return res, nil
}

func nameFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	i := strings.LastIndex(u.Path, "/")
	return u.Path[i+1:]
}
