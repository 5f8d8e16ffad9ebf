// Package github publishes posts to a repository through the GitHub
// contents API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/post"
	"github.com/rs/zerolog"
)

const (
	acceptHeader    = "application/vnd.github.v3+json"
	defaultBaseURL  = "https://api.github.com"
	maxErrorBodyLen = 16 * 1024
)

var (
	// ErrInvalidConfig is returned when owner, repo or token is missing.
	ErrInvalidConfig = errors.New("github settings incomplete, check token and repository")
	// ErrMissingSHA is returned when deleting a post that was never published.
	ErrMissingSHA = errors.New("cannot delete remote file without sha, is the post published")
	// ErrDecode is returned when a response does not carry the expected data.
	ErrDecode = errors.New("failed to decode github response")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	return "github api: " + e.Message
}

// Client talks to the contents API for a single repository.
type Client struct {
	cfg     config.GitHubConfig
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for cfg. The config is checked on every call so a
// client can be built before settings are complete.
func New(cfg config.GitHubConfig, opts ...Option) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if base == "" {
		base = defaultBaseURL
	}

	c := &Client{
		cfg:     cfg,
		baseURL: base,
		http:    http.DefaultClient,
		logger:  logging.Component("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type putFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

type deleteFileRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

type fileResponse struct {
	Content *struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Publish creates or updates the remote copy of p and returns the new blob
// sha. The uploaded document never carries a sha field of its own.
func (c *Client) Publish(ctx context.Context, p post.Post) (string, error) {
	if !c.cfg.IsValid() {
		return "", ErrInvalidConfig
	}

	endpoint, err := c.contentsURL(p.FileName)
	if err != nil {
		return "", err
	}

	upload := p
	upload.Meta.SHA = ""

	body := putFileRequest{
		Message: "Publish: " + p.Title(),
		Content: base64.StdEncoding.EncodeToString([]byte(upload.Markdown())),
		SHA:     p.Meta.SHA,
		Branch:  c.cfg.BranchOrDefault(),
	}

	c.logger.Info().Ctx(ctx).Str("url", endpoint).Msg("publishing")

	data, err := c.send(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return "", err
	}

	var resp fileResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if resp.Content == nil || resp.Content.SHA == "" {
		return "", ErrDecode
	}

	return resp.Content.SHA, nil
}

// Delete removes the remote copy of p. The post must carry the sha of the
// remote version.
func (c *Client) Delete(ctx context.Context, p post.Post) error {
	if !c.cfg.IsValid() {
		return ErrInvalidConfig
	}
	if p.Meta.SHA == "" {
		return ErrMissingSHA
	}

	endpoint, err := c.contentsURL(p.FileName)
	if err != nil {
		return err
	}

	body := deleteFileRequest{
		Message: "Delete: " + p.Title(),
		SHA:     p.Meta.SHA,
		Branch:  c.cfg.BranchOrDefault(),
	}

	c.logger.Info().Ctx(ctx).Str("url", endpoint).Msg("deleting remote file")

	_, err = c.send(ctx, http.MethodDelete, endpoint, body)
	return err
}

// contentsURL builds /repos/{owner}/{repo}/contents/{path}/{file} with each
// path segment escaped.
func (c *Client) contentsURL(fileName string) (string, error) {
	folder := strings.Trim(c.cfg.Path, "/")
	full := strings.Trim(fileName, "/")
	if folder != "" {
		full = folder + "/" + full
	}
	if full == "" {
		return "", fmt.Errorf("github: empty file path")
	}

	segments := strings.Split(full, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	raw := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL,
		url.PathEscape(c.cfg.Owner),
		url.PathEscape(c.cfg.Repo),
		strings.Join(segments, "/"),
	)

	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("github: invalid url: %w", err)
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("github: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.cfg.Token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: %s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: read response: %w", err)
	}
	return data, nil
}

func readStatusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	var msg string
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		msg = "unauthorized, check token"
	case http.StatusNotFound:
		msg = "file or repository not found"
	case http.StatusConflict:
		msg = "conflict, sync required"
	case http.StatusUnprocessableEntity:
		msg = "validation failed"
	default:
		msg = fmt.Sprintf("status %d", resp.StatusCode)
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: msg,
		Body:    strings.TrimSpace(string(b)),
	}
}
