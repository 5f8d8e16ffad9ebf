package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/frontmatter"
	"github.com/colonyops/quill/internal/core/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Header  http.Header
	Body    map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		reqs = append(reqs, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			RawPath: r.URL.EscapedPath(),
			Header:  r.Header.Clone(),
			Body:    body,
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func testConfig(url string) config.GitHubConfig {
	return config.GitHubConfig{
		Owner:  "octo",
		Repo:   "blog",
		Token:  "secret",
		Path:   "/content/posts/",
		APIURL: url,
	}
}

func testPost() post.Post {
	p := post.New("Hello World", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	p.Body = "Body.\n"
	return p
}

func TestClient_Publish(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusCreated, `{"content":{"sha":"newsha"}}`)
	client := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))

	p := testPost()
	sha, err := client.Publish(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "newsha", sha)

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/repos/octo/blog/contents/content/posts/2024-01-02-hello-world.md", req.Path)
	assert.Equal(t, "token secret", req.Header.Get("Authorization"))
	assert.Equal(t, "application/vnd.github.v3+json", req.Header.Get("Accept"))

	assert.Equal(t, "Publish: Hello World", req.Body["message"])
	assert.Equal(t, "main", req.Body["branch"])
	_, hasSHA := req.Body["sha"]
	assert.False(t, hasSHA, "first publish sends no sha")

	content, err := base64.StdEncoding.DecodeString(req.Body["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, p.Markdown(), string(content))
}

func TestClient_PublishUpdateSendsSHA(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"content":{"sha":"v2"}}`)
	cfg := testConfig(srv.URL)
	cfg.Branch = "gh-pages"
	client := New(cfg, WithHTTPClient(srv.Client()))

	p := testPost()
	p.Meta.SHA = "v1"

	sha, err := client.Publish(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "v2", sha)

	req := (*reqs)[0]
	assert.Equal(t, "v1", req.Body["sha"])
	assert.Equal(t, "gh-pages", req.Body["branch"])

	content, err := base64.StdEncoding.DecodeString(req.Body["content"].(string))
	require.NoError(t, err)
	meta, body := frontmatter.Parse(string(content))
	assert.Empty(t, meta.SHA, "uploaded file must not carry a sha")
	assert.Equal(t, "Hello World", meta.Title)
	assert.Equal(t, "Body.\n", body)
}

func TestClient_PublishEscapesPath(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"content":{"sha":"x"}}`)
	cfg := testConfig(srv.URL)
	cfg.Path = ""
	client := New(cfg, WithHTTPClient(srv.Client()))

	p := testPost()
	p.FileName = "drafts/my post?.md"

	_, err := client.Publish(context.Background(), p)
	require.NoError(t, err)

	req := (*reqs)[0]
	assert.Equal(t, "/repos/octo/blog/contents/drafts/my post?.md", req.Path)
	assert.Equal(t, "/repos/octo/blog/contents/drafts/my%20post%3F.md", req.RawPath)
}

func TestClient_PublishDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "missing content", response: `{}`},
		{name: "empty sha", response: `{"content":{"sha":""}}`},
		{name: "not json", response: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.StatusOK, tt.response)
			client := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))

			_, err := client.Publish(context.Background(), testPost())
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{status: http.StatusUnauthorized, message: "unauthorized, check token"},
		{status: http.StatusNotFound, message: "file or repository not found"},
		{status: http.StatusConflict, message: "conflict, sync required"},
		{status: http.StatusUnprocessableEntity, message: "validation failed"},
		{status: http.StatusInternalServerError, message: "status 500"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, `{"message":"nope"}`)
			client := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))

			_, err := client.Publish(context.Background(), testPost())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, `{"message":"nope"}`, apiErr.Body)
		})
	}
}

func TestClient_Delete(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"content":null}`)
	client := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))

	p := testPost()
	p.Meta.SHA = "abc"

	require.NoError(t, client.Delete(context.Background(), p))

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "Delete: Hello World", req.Body["message"])
	assert.Equal(t, "abc", req.Body["sha"])
	assert.Equal(t, "main", req.Body["branch"])
}

func TestClient_DeleteRequiresSHA(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	client := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))

	err := client.Delete(context.Background(), testPost())
	require.ErrorIs(t, err, ErrMissingSHA)
	assert.Empty(t, *reqs)
}

func TestClient_InvalidConfig(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	cfg := testConfig(srv.URL)
	cfg.Token = ""
	client := New(cfg, WithHTTPClient(srv.Client()))

	_, err := client.Publish(context.Background(), testPost())
	require.ErrorIs(t, err, ErrInvalidConfig)

	p := testPost()
	p.Meta.SHA = "abc"
	require.ErrorIs(t, client.Delete(context.Background(), p), ErrInvalidConfig)
	assert.Empty(t, *reqs)
}

func TestClient_UntitledMessage(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"content":{"sha":"x"}}`)
	client := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))

	p := post.New("", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	_, err := client.Publish(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Publish: Untitled", (*reqs)[0].Body["message"])
}
