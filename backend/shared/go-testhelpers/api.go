package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"
)

// BuildAuthRequest builds a request with a bearer token and, for bodies, a
// JSON content type.
func (h *TestHelper) BuildAuthRequest(method, reqURL, jwtString string, body []byte) *http.Request {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(body))
	require.NoError(h.T, err)
	if jwtString != "" {
		req.Header.Set("Authorization", "Bearer "+jwtString)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// DoJSON sends v as JSON and decodes the response into out when out is not
// nil. The status code is returned for assertions.
func (h *TestHelper) DoJSON(method, reqURL, jwtString string, v, out any) int {
	var body []byte
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(h.T, err)
		body = b
	}
	resp := h.DoRequest(h.BuildAuthRequest(method, reqURL, jwtString, body), nil)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(h.T, json.NewDecoder(resp.Body).Decode(out), "Failed to decode %s %s", method, reqURL)
	}
	return resp.StatusCode
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	// restore so the body can be read again
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}
