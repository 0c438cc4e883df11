package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrFetchFailed covers every way extraction can fail: network error,
// non-2xx response, or unparseable HTML. Callers embedding extraction in a
// larger workflow treat it as best-effort and degrade to empty fields.
var ErrFetchFailed = errors.New("failed to fetch metadata")

const userAgent = "Mozilla/5.0 (compatible; BookmarkManager/1.0)"

// Metadata is the best-effort (title, description, favicon) triple
// extracted from a page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
}

type Extractor struct {
	client *http.Client
}

func NewExtractor(timeout time.Duration) *Extractor {
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Extract fetches rawURL and pulls title, description, and favicon out of
// the page with ordered fallbacks:
//
//	title:       og:title, twitter:title, <title>
//	description: og:description, twitter:description, description meta
//	favicon:     link[rel=icon], link[rel="shortcut icon"], {origin}/favicon.ico
//
// Relative favicon hrefs are resolved against the page origin. One fetch
// per call; no retries, no caching.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Metadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrFetchFailed, rawURL)
	}
	origin := u.Scheme + "://" + u.Host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var p page
	p.walk(doc)

	title := firstNonEmpty(p.metaProperty["og:title"], p.metaName["twitter:title"], p.title)
	description := firstNonEmpty(p.metaProperty["og:description"], p.metaName["twitter:description"], p.metaName["description"])

	favicon := firstNonEmpty(p.icon, p.shortcutIcon)
	switch {
	case favicon == "":
		favicon = origin + "/favicon.ico"
	case !strings.HasPrefix(favicon, "http"):
		favicon = origin + favicon
	}

	return &Metadata{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Favicon:     strings.TrimSpace(favicon),
	}, nil
}

// page collects the first occurrence of each element of interest, matching
// the first-match semantics of a DOM query.
type page struct {
	metaProperty map[string]string
	metaName     map[string]string
	title        string
	titleSeen    bool
	icon         string
	shortcutIcon string
}

func (p *page) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			p.meta(n)
		case "title":
			if !p.titleSeen {
				p.title = textContent(n)
				p.titleSeen = true
			}
		case "link":
			p.link(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *page) meta(n *html.Node) {
	property := attr(n, "property")
	name := attr(n, "name")
	content := attr(n, "content")

	if property != "" {
		if p.metaProperty == nil {
			p.metaProperty = make(map[string]string)
		}
		if _, ok := p.metaProperty[property]; !ok {
			p.metaProperty[property] = content
		}
	}
	if name != "" {
		if p.metaName == nil {
			p.metaName = make(map[string]string)
		}
		if _, ok := p.metaName[name]; !ok {
			p.metaName[name] = content
		}
	}
}

func (p *page) link(n *html.Node) {
	rel := attr(n, "rel")
	href := attr(n, "href")
	switch {
	case strings.EqualFold(rel, "icon"):
		if p.icon == "" {
			p.icon = href
		}
	case strings.EqualFold(rel, "shortcut icon"):
		if p.shortcutIcon == "" {
			p.shortcutIcon = href
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
