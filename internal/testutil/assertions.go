package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response status code and dumps the body on
// mismatch so failures are debuggable.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()

	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, resp.StatusCode, string(body))
	}
}

// AssertJSONResponse decodes the response body into target
func AssertJSONResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	err := json.NewDecoder(resp.Body).Decode(target)
	require.NoError(t, err, "failed to decode JSON response")
}

// AssertErrorResponse checks status and that the plain-text body contains the
// expected message.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	require.Equal(t, expectedStatus, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, strings.TrimSpace(string(body)), expectedMessage)
}
