package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

const (
	// StatusOnline is the value of "status" in a healthy probe response.
	StatusOnline = "online"
	// FileField is the multipart field the backend reads the upload from.
	FileField = "file"

	analyzePath     = "/analyze-csv"
	maxResponseSize = 64 << 20
)

// Client talks to the CSV analysis backend.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	uploadTimeout time.Duration
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUploadTimeout bounds a single Analyze call.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.uploadTimeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{},
		baseURL:       strings.TrimRight(baseURL, "/"),
		uploadTimeout: 60 * time.Second,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Probe performs the health check. It returns nil only when the backend answers
// 2xx with {"status":"online"}; the caller bounds the call through ctx.
func (c *Client) Probe(ctx context.Context) error {
	endpoint := c.baseURL + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnreachableError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &UnreachableError{URL: c.baseURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyAPIError(newAPIError(resp.StatusCode, body))
	}
	status := gjson.GetBytes(body, "status").String()
	if status != StatusOnline {
		return &OfflineError{Status: status}
	}
	return nil
}

// Analyze uploads a CSV file and decodes the analysis document. Transport failures
// are *UnreachableError, non-2xx answers are *APIError or one of its typed wrappers,
// and malformed documents are *analysis.SchemaError.
func (c *Client) Analyze(ctx context.Context, filename string, data io.Reader) (*analysis.Result, error) {
	payload, contentType, err := multipartBody(filename, data)
	if err != nil {
		return nil, err
	}
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	endpoint := c.baseURL + analyzePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnreachableError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &UnreachableError{URL: c.baseURL, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("analyze request finished",
		"file", filename, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyAPIError(newAPIError(resp.StatusCode, body))
	}
	res, err := analysis.Decode(body)
	if err != nil {
		return nil, err
	}
	for col, t := range res.ColumnTypes {
		if !t.Valid() {
			c.logger.Debug("unrecognized column type", "column", col, "type", t)
		}
		if len(res.Preview) > 0 {
			if _, ok := res.Preview[0].Get(col); !ok {
				c.logger.Debug("column type without preview column", "column", col)
			}
		}
	}
	return res, nil
}

func multipartBody(filename string, data io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, filepath.Base(filename)))
	h.Set("Content-Type", "text/csv")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("finish form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var raw map[string]any
	if json.Unmarshal(body, &raw) == nil {
		apiErr.Raw = raw
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		apiErr.Message = detail.String()
	case detail.IsArray():
		// FastAPI validation errors: [{"loc": [...], "msg": "...", ...}]
		var msgs []string
		for _, d := range detail.Array() {
			if m := d.Get("msg").String(); m != "" {
				msgs = append(msgs, m)
			}
		}
		apiErr.Message = strings.Join(msgs, "; ")
	case gjson.GetBytes(body, "message").Exists():
		apiErr.Message = gjson.GetBytes(body, "message").String()
	}
	return apiErr
}
