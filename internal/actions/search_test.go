package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchAbstract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "golang", r.URL.Query().Get("q"))
		require.Equal(t, "json", r.URL.Query().Get("format"))
		require.Equal(t, "1", r.URL.Query().Get("no_redirect"))
		w.Write([]byte(`{"AbstractText":"Go is a programming language.","Results":[]}`))
	}))
	defer srv.Close()

	got, err := NewSearcher(srv.Client(), srv.URL).Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Equal(t, "Go is a programming language.", got)
}

func TestSearchFirstResultAndTruncation(t *testing.T) {
	long := strings.Repeat("word ", 60)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AbstractText":"","Results":[{"Text":"` + long + `"}]}`))
	}))
	defer srv.Close()

	got, err := NewSearcher(srv.Client(), srv.URL).Search(context.Background(), "x")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(got, "..."))
	require.LessOrEqual(t, len(got), 203)
	require.False(t, strings.HasSuffix(strings.TrimSuffix(got, "..."), " "))
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	got, err := NewSearcher(srv.Client(), srv.URL).Search(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "No results found", got)
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewSearcher(srv.Client(), srv.URL).Search(context.Background(), "x")
	require.Error(t, err)
}
