package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClientDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, err := NewClient("", time.Second)
	require.NoError(t, err)
	require.Equal(t, time.Second, c.Timeout)

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewClientSocks(t *testing.T) {
	c, err := NewClient("127.0.0.1:1080", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, c.Timeout)
	require.IsType(t, &http.Transport{}, c.Transport)
}
