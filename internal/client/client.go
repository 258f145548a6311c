// Package client is an HTTP client for the upload and gallery endpoints. It
// runs the full publish workflow: request a signed URL, PUT the bytes to
// object storage, then register the public URL.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stillwater/lodge/internal/media"
	"github.com/stillwater/lodge/internal/upload"
)

// Workflow steps reported by StepError.
const (
	StepIssueURL = "issue-url"
	StepUpload   = "upload"
	StepRegister = "register"
)

// StepError names the workflow step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("status %d: %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Client talks to the lodge API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	token      string
	logger     *slog.Logger
}

// New creates a client for the API at baseURL. apiKey is sent as x-api-key
// when non-empty.
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.With(slog.String("component", "lodge_client")),
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// RequestGrant asks the API for a signed upload URL.
// POST /upload/signed-url
func (c *Client) RequestGrant(ctx context.Context, req upload.Request) (*upload.Grant, error) {
	var grant upload.Grant
	if err := c.do(ctx, http.MethodPost, "/upload/signed-url", req, http.StatusOK, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Upload PUTs body to a signed writeURL. contentType must match the one the
// URL was signed for.
func (c *Client) Upload(ctx context.Context, writeURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, writeURL, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if size > 0 {
		req.ContentLength = size
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL issued by our own API
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return nil
}

// RegisterMedia records an uploaded object's public URL.
// POST /gallery
func (c *Client) RegisterMedia(ctx context.Context, publicURL, folder string) (*media.Record, error) {
	body := map[string]string{"url": publicURL, "folder": folder}
	var rec media.Record
	if err := c.do(ctx, http.MethodPost, "/gallery", body, http.StatusCreated, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListMedia lists registered media, filtered by folder when non-empty.
// GET /gallery?category=
func (c *Client) ListMedia(ctx context.Context, folder string) ([]media.Record, error) {
	path := "/gallery"
	if folder != "" {
		path += "?category=" + url.QueryEscape(folder)
	}
	var recs []media.Record
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// File is one local file to publish.
type File struct {
	Name        string
	ContentType string
	Folder      string
	Body        io.Reader
	Size        int64
}

// Published is the outcome of a successful Publish.
type Published struct {
	Grant  upload.Grant
	Record media.Record
}

// Publish uploads f and registers it. A failure is a *StepError naming the
// step; nothing is registered unless the upload succeeded.
func (c *Client) Publish(ctx context.Context, f File) (*Published, error) {
	contentType := f.ContentType
	if contentType == "" {
		contentType = upload.DefaultContentType
	}

	grant, err := c.RequestGrant(ctx, upload.Request{
		FileName:    f.Name,
		ContentType: contentType,
		Folder:      f.Folder,
	})
	if err != nil {
		return nil, &StepError{Step: StepIssueURL, Err: err}
	}

	if err := c.Upload(ctx, grant.WriteURL, contentType, f.Body, f.Size); err != nil {
		return nil, &StepError{Step: StepUpload, Err: err}
	}

	rec, err := c.RegisterMedia(ctx, grant.PublicURL, f.Folder)
	if err != nil {
		return nil, &StepError{Step: StepRegister, Err: err}
	}

	c.logger.InfoContext(ctx, "media published",
		slog.String("object_key", grant.ObjectKey),
		slog.String("id", rec.ID),
	)
	return &Published{Grant: *grant, Record: *rec}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL from configuration
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}

	var eb struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		apiErr.Message = eb.Error
		apiErr.Field = eb.Field
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsStep reports whether err is a StepError for step.
func IsStep(err error, step string) bool {
	var se *StepError
	return errors.As(err, &se) && se.Step == step
}
