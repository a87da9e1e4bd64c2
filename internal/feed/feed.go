// Package feed loads subreddit submissions from reddit's RSS/Atom feeds.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

const userAgent = "frontpage/0.1 (terminal reader)"

// Options configure a Source.
type Options struct {
	// URLTemplate is the feed URL with {subreddit} in place of the name.
	URLTemplate string
	Limit       int
	Timeout     time.Duration
	Client      *http.Client
}

// Source fetches submissions for a subreddit.
type Source struct {
	parser  *gofeed.Parser
	tmpl    string
	limit   int
	timeout time.Duration
}

// ErrNoTemplate is returned when the url template cannot name a subreddit.
var ErrNoTemplate = errors.New("feed url template must contain {subreddit}")

// New creates a source.
func New(o Options) (*Source, error) {
	if !strings.Contains(o.URLTemplate, "{subreddit}") {
		return nil, ErrNoTemplate
	}
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	if o.Client != nil {
		p.Client = o.Client
	}
	return &Source{parser: p, tmpl: o.URLTemplate, limit: o.Limit, timeout: o.Timeout}, nil
}

// URL returns the feed url of a subreddit. The front page drops the
// subreddit path segment.
func (s *Source) URL(subreddit string) string {
	if subreddit == "" || strings.EqualFold(subreddit, subscription.FrontPage) {
		u := strings.Replace(s.tmpl, "r/{subreddit}/", "", 1)
		return strings.ReplaceAll(u, "{subreddit}", "all")
	}
	return strings.ReplaceAll(s.tmpl, "{subreddit}", url.PathEscape(subreddit))
}

// Load fetches and maps up to the configured limit of submissions.
func (s *Source) Load(ctx context.Context, subreddit string) ([]submission.Submission, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	feedURL := s.URL(subreddit)
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", feedURL, err)
	}

	items := parsed.Items
	if s.limit > 0 && len(items) > s.limit {
		items = items[:s.limit]
	}
	out := make([]submission.Submission, 0, len(items))
	for _, item := range items {
		sub, ok := toSubmission(item)
		if !ok {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func toSubmission(item *gofeed.Item) (submission.Submission, bool) {
	id := strings.TrimPrefix(item.GUID, "t3_")
	if id == "" {
		id = item.Link
	}
	if id == "" {
		return submission.Submission{}, false
	}

	s := submission.Submission{
		ID:        id,
		Title:     strings.TrimSpace(item.Title),
		Permalink: item.Link,
		Subreddit: subredditOf(item),
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		s.Author = strings.TrimPrefix(item.Authors[0].Name, "/u/")
	}
	switch {
	case item.PublishedParsed != nil:
		s.Created = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		s.Created = *item.UpdatedParsed
	}

	link, img := scanContent(item.Content)
	s.URL = link
	if s.URL == "" || sameURL(s.URL, s.Permalink) {
		s.URL = s.Permalink
		s.IsSelf = true
	}
	s.ThumbnailURL = thumbnailOf(item)
	if s.ThumbnailURL == "" {
		s.ThumbnailURL = img
	}
	return s, true
}

// subredditOf reads the subreddit from the entry category, falling back to
// the permalink path.
func subredditOf(item *gofeed.Item) string {
	if len(item.Categories) > 0 && item.Categories[0] != "" {
		return strings.TrimPrefix(item.Categories[0], "r/")
	}
	u, err := url.Parse(item.Link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "r" {
		return parts[1]
	}
	return ""
}

func thumbnailOf(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, e := range media["thumbnail"] {
			if u := e.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// scanContent pulls the "[link]" target and the first image out of the
// entry's HTML body.
func scanContent(body string) (link, img string) {
	if body == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", ""
	}
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) == "[link]" {
			link, _ = a.Attr("href")
			return false
		}
		return true
	})
	img, _ = doc.Find("img").First().Attr("src")
	return link, img
}

func sameURL(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
