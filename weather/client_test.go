package weather

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(" ", "02210")
	assert.Equal(t, errAPIKeyMissing, err)

	_, err = NewClient("key", "")
	assert.Equal(t, errZipMissing, err)
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, currentEndpoint, r.URL.Path)
		assert.Equal(t, "02210,us", r.URL.Query().Get("zip"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, bostonReport)
	}))
	defer srv.Close()

	c, err := NewClient("secret", "02210", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	s, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(-1), s.Temp.Int64)
	assert.Equal(t, "03d", s.Icon.String)
}

func TestFetchFailures(t *testing.T) {
	tables := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"status",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
			},
		},
		{
			"decode",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "<html>")
			},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			srv := httptest.NewServer(table.handler)
			defer srv.Close()

			c, err := NewClient("secret", "02210", WithBaseURL(srv.URL))
			require.NoError(t, err)

			s, err := c.Fetch(context.Background())
			assert.Nil(t, s)
			assert.True(t, IsFetchFailure(err))
		})
	}
}

type failingClient struct{ err error }

func (f failingClient) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestFetchTransportFailure(t *testing.T) {
	cause := errors.New("no route to host")
	c, err := NewClient("secret", "02210", WithHTTPClient(failingClient{cause}), WithClock(func() time.Time { return time.Unix(0, 0) }))
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, IsFetchFailure(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "no route to host")
}
