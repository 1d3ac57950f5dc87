package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestServer serves a handler and remembers cookies across requests. It does
// not follow redirects so tests can assert on Location.
type TestServer struct {
	*httptest.Server
	t      *testing.T
	client *http.Client
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &TestServer{
		Server: server,
		t:      t,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Do sends a request with optional headers.
func (ts *TestServer) Do(method, path string, body io.Reader, headers map[string]string) *http.Response {
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(ts.t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.client.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *TestServer) GET(path string) *http.Response {
	return ts.Do(http.MethodGet, path, nil, nil)
}

// HTMX issues a request the way htmx does.
func (ts *TestServer) HTMX(method, path string, form url.Values) *http.Response {
	headers := map[string]string{"HX-Request": "true"}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
		headers["Content-Type"] = "application/x-www-form-urlencoded"
	}
	return ts.Do(method, path, body, headers)
}

// POST submits an urlencoded form.
func (ts *TestServer) POST(path string, form url.Values) *http.Response {
	return ts.Do(http.MethodPost, path, strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

// PostMultipart submits a prepared multipart body.
func (ts *TestServer) PostMultipart(path string, body io.Reader, contentType string) *http.Response {
	return ts.Do(http.MethodPost, path, body, map[string]string{"Content-Type": contentType})
}

// Body reads the whole response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
