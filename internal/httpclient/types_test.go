package httpclient_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labcatalog/catalog-sync/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		url           string
		message       string
		expectedError string
	}{
		{
			name:          "all fields",
			statusCode:    404,
			url:           "http://example.com/modules/3",
			message:       "404 Not Found",
			expectedError: "HTTP 404 for URL http://example.com/modules/3: 404 Not Found",
		},
		{
			name:          "empty message",
			statusCode:    503,
			url:           "http://example.com",
			expectedError: "HTTP 503 for URL http://example.com: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := httpclient.NewHTTPError(tt.statusCode, tt.url, tt.message)
			assert.EqualError(t, err, tt.expectedError)
			assert.Equal(t, tt.statusCode, httpclient.StatusCode(err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("fetching module: %w", httpclient.NewHTTPError(410, "u", "Gone"))
	assert.Equal(t, 410, httpclient.StatusCode(wrapped))
	assert.Equal(t, 0, httpclient.StatusCode(errors.New("dial tcp: refused")))
	assert.Equal(t, 0, httpclient.StatusCode(nil))
}
