package preview

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head>
<title> Plain title </title>
<meta name="description" content="plain description">
<meta property="og:title" content="OG title">
<meta property="og:image" content="/img/cover.png">
<meta property="og:site_name" content="Example">
</head><body><meta property="og:description" content="ignored"></body></html>`

func TestPreview(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p, err := NewHTMLPreviewer(time.Second, 8)
	require.NoError(t, err)
	p.allowPrivate = true

	got, err := p.Preview(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/post", got.URL)
	assert.Equal(t, "OG title", got.Title)
	assert.Equal(t, "plain description", got.Description)
	assert.Equal(t, srv.URL+"/img/cover.png", got.Image)
	assert.Equal(t, "Example", got.SiteName)

	_, err = p.Preview(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second call is cached")
}

func TestPreviewFallsBackToTitle(t *testing.T) {
	got := parse(strings.NewReader(`<html><head><title>Only title</title></head></html>`))
	assert.Equal(t, "Only title", got.Title)
	assert.Empty(t, got.Description)
}

func TestPreviewNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	p, err := NewHTMLPreviewer(time.Second, 0)
	require.NoError(t, err)
	p.allowPrivate = true
	got, err := p.Preview(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, got.URL)
	assert.Empty(t, got.Title)
}

func TestPreviewErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p, err := NewHTMLPreviewer(time.Second, 0)
	require.NoError(t, err)
	p.allowPrivate = true

	_, err = p.Preview(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalid)

	for _, u := range []string{"", "ftp://example.com", "/relative", "http://"} {
		_, err := p.Preview(context.Background(), u)
		assert.ErrorIs(t, err, domain.ErrInvalid, u)
	}
}

func TestPreviewRefusesPrivateAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p, err := NewHTMLPreviewer(time.Second, 0)
	require.NoError(t, err)

	_, err = p.Preview(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Equal(t, int32(0), hits.Load(), "no request reached the server")
}

func TestIsPublic(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"192.168.0.10", false},
		{"172.16.5.4", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"93.184.216.34", true},
		{"2606:4700::1111", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPublic(net.ParseIP(tt.ip)), tt.ip)
	}
}
