// Package preview builds link previews from the OpenGraph and HTML metadata
// of a page.
package preview

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/port"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const maxBodyBytes = 1 << 20

type HTMLPreviewer struct {
	client *http.Client
	cache  *lru.Cache[string, port.LinkPreview]

	// allowPrivate lifts the public address check. Tests only.
	allowPrivate bool
}

func NewHTMLPreviewer(timeout time.Duration, cacheSize int) (*HTMLPreviewer, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, port.LinkPreview](cacheSize)
	if err != nil {
		return nil, err
	}
	p := &HTMLPreviewer{cache: cache}

	// The check runs on the resolved address of every dial, redirects
	// included, so DNS names pointing inward are caught too.
	dialer := &net.Dialer{
		Timeout: timeout,
		Control: p.checkAddress,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	p.client = &http.Client{Timeout: timeout, Transport: transport}
	return p, nil
}

func (p *HTMLPreviewer) checkAddress(network, address string, _ syscall.RawConn) error {
	if p.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublic(ip) {
		return fmt.Errorf("%w: refusing to fetch from %s", domain.ErrInvalid, host)
	}
	return nil
}

func isPublic(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

func (p *HTMLPreviewer) Preview(ctx context.Context, rawURL string) (port.LinkPreview, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return port.LinkPreview{}, fmt.Errorf("%w: url must be absolute http(s)", domain.ErrInvalid)
	}
	key := u.String()
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return port.LinkPreview{}, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := p.client.Do(req)
	if err != nil {
		return port.LinkPreview{}, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return port.LinkPreview{}, fmt.Errorf("fetch %s: status %d", key, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		preview := port.LinkPreview{URL: key}
		p.cache.Add(key, preview)
		return preview, nil
	}

	preview := parse(io.LimitReader(resp.Body, maxBodyBytes))
	preview.URL = key
	if preview.Image != "" {
		if img, err := u.Parse(preview.Image); err == nil {
			preview.Image = img.String()
		}
	}
	p.cache.Add(key, preview)
	log.Debug().Str("url", key).Str("title", preview.Title).Msg("Link preview built")
	return preview, nil
}

// parse reads the head of a page. OpenGraph values win over <title> and
// <meta name="description">.
func parse(r io.Reader) port.LinkPreview {
	var (
		out     port.LinkPreview
		title   string
		desc    string
		inTitle bool
	)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return finish(out, title, desc)

		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch t.Data {
			case "title":
				inTitle = true
			case "meta":
				key, content := metaPair(t)
				switch key {
				case "og:title":
					out.Title = content
				case "og:description":
					out.Description = content
				case "og:image":
					out.Image = content
				case "og:site_name":
					out.SiteName = content
				case "description":
					desc = content
				}
			case "body":
				return finish(out, title, desc)
			}

		case html.TextToken:
			if inTitle && title == "" {
				title = strings.TrimSpace(string(z.Text()))
			}

		case html.EndTagToken:
			t := z.Token()
			if t.Data == "title" {
				inTitle = false
			}
			if t.Data == "head" {
				return finish(out, title, desc)
			}
		}
	}
}

func metaPair(t html.Token) (key, content string) {
	for _, a := range t.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(a.Val)
			}
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	return key, content
}

func finish(out port.LinkPreview, title, desc string) port.LinkPreview {
	if out.Title == "" {
		out.Title = title
	}
	if out.Description == "" {
		out.Description = desc
	}
	return out
}
