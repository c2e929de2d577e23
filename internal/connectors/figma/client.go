package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/logger"
)

const (
	// DefaultBaseURL is the public REST API root.
	DefaultBaseURL = "https://api.figma.com/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// HeaderToken carries a personal access token.
	HeaderToken = "X-Figma-Token"

	// MaxImageBytes caps the size of a downloaded render.
	MaxImageBytes = 64 << 20

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	AccessToken       string
	OAuth             bool
	ImageFormat       string
	ImageScale        float64
	BatchSize         int
	RequestsPerSecond float64
	Timeout           time.Duration

	// HTTPClient overrides the transport for API calls. Authentication is
	// still applied on top of it.
	HTTPClient *http.Client
}

// Client talks to the design API. It is safe for concurrent use.
type Client struct {
	baseURL     string
	token       string
	api         *http.Client
	download    *http.Client
	format      string
	scale       float64
	batchSize   int
	rateLimiter *RateLimiter
}

var (
	_ driven.DocumentSource  = (*Client)(nil)
	_ driven.ImageDownloader = (*Client)(nil)
)

// NewClient creates a client. The access token is required.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.AccessToken == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("figma access token is required"))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := &http.Client{Timeout: timeout}
	if opts.HTTPClient != nil {
		base = opts.HTTPClient
	}

	c := &Client{
		baseURL:     strings.TrimSuffix(orDefault(opts.BaseURL, DefaultBaseURL), "/"),
		api:         base,
		download:    &http.Client{Timeout: timeout, Transport: base.Transport},
		format:      orDefault(opts.ImageFormat, "png"),
		scale:       opts.ImageScale,
		batchSize:   opts.BatchSize,
		rateLimiter: NewRateLimiter(opts.RequestsPerSecond),
	}
	if c.scale <= 0 {
		c.scale = 2
	}
	if c.batchSize <= 0 || c.batchSize > domain.MaxImageBatch {
		c.batchSize = domain.MaxImageBatch
	}

	if opts.OAuth {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken})
		c.api = oauth2.NewClient(ctx, ts)
		c.api.Timeout = timeout
	} else {
		c.token = opts.AccessToken
	}

	return c, nil
}

// NewClientFromConfig creates a client from the [figma] configuration section.
func NewClientFromConfig(ctx context.Context, cfg domain.FigmaConfig) (*Client, error) {
	timeout, err := domain.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, Options{
		BaseURL:           cfg.APIBase,
		AccessToken:       cfg.AccessToken,
		OAuth:             cfg.AuthMethod == domain.AuthOAuth,
		ImageFormat:       cfg.ImageFormat,
		ImageScale:        cfg.ImageScale,
		BatchSize:         cfg.BatchSize,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           timeout,
	})
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// FetchDocument returns the document tree down to depth. Depth 0 is the
// full tree.
func (c *Client) FetchDocument(ctx context.Context, fileID string, depth int) (*domain.FileInfo, error) {
	q := url.Values{}
	setDepth(q, depth)

	var body fileResponse
	if err := c.getJSON(ctx, "/files/"+url.PathEscape(fileID), q, &body); err != nil {
		return nil, err
	}
	if body.Document == nil {
		return nil, fmt.Errorf("%w: file %s has no document", domain.ErrMalformedDocument, fileID)
	}

	return &domain.FileInfo{
		Name:         body.Name,
		Version:      body.Version,
		LastModified: body.LastModified,
		Document:     *body.Document,
	}, nil
}

// FetchSubtree returns the subtrees rooted at nodeIDs in one request.
// Ids the API does not know are absent from the result.
func (c *Client) FetchSubtree(
	ctx context.Context,
	fileID string,
	nodeIDs []string,
	depth int,
) (map[string]domain.Node, error) {
	out := make(map[string]domain.Node, len(nodeIDs))
	if len(nodeIDs) == 0 {
		return out, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	setDepth(q, depth)

	var body nodesResponse
	if err := c.getJSON(ctx, "/files/"+url.PathEscape(fileID)+"/nodes", q, &body); err != nil {
		return nil, err
	}

	for id, entry := range body.Nodes {
		if entry == nil || entry.Document == nil {
			continue
		}
		out[id] = entry.Document.Node
	}
	return out, nil
}

// FetchRenderedImages renders nodeIDs and returns their temporary download
// URLs. Ids are sent in chunks of the configured batch size. Nodes that did
// not render are absent from the result.
func (c *Client) FetchRenderedImages(
	ctx context.Context,
	fileID string,
	nodeIDs []string,
) (map[string]string, error) {
	out := make(map[string]string, len(nodeIDs))
	for start := 0; start < len(nodeIDs); start += c.batchSize {
		end := min(start+c.batchSize, len(nodeIDs))

		q := url.Values{}
		q.Set("ids", strings.Join(nodeIDs[start:end], ","))
		q.Set("format", c.format)
		q.Set("scale", strconv.FormatFloat(c.scale, 'f', -1, 64))

		var body imagesResponse
		if err := c.getJSON(ctx, "/images/"+url.PathEscape(fileID), q, &body); err != nil {
			return nil, err
		}
		if body.Err != nil && *body.Err != "" {
			logger.Warn("Render request for file %s reported: %s", fileID, *body.Err)
		}
		for id, u := range body.Images {
			if u != nil && *u != "" {
				out[id] = *u
			}
		}
	}
	return out, nil
}

// Download fetches a rendered image. Render URLs are pre-signed, so no
// credentials are attached.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(rawURL, resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image at %s exceeds %d bytes", rawURL, MaxImageBytes)
	}
	return data, nil
}

// getJSON performs a throttled GET against the API and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(HeaderToken, c.token)
	}

	logger.Debug("GET %s", u)
	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.Observe(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(u, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrMalformedDocument, path, err)
	}
	return nil
}

func upstreamError(u string, resp *http.Response) error {
	apiErr := &domain.UpstreamAPIError{
		URL:        u,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e errorResponse
	if json.Unmarshal(body, &e) == nil {
		apiErr.Message = e.text()
	}
	return apiErr
}

func setDepth(q url.Values, depth int) {
	if depth > 0 {
		q.Set("depth", strconv.Itoa(depth))
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
