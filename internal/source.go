package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/prongbang/callx"
)

// DataSource returns the contents of one day's CSV file.
type DataSource interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// ResolveFile returns the file name for a requested date. An empty date
// falls back to defaultDate.
func ResolveFile(date, defaultDate, extension string) string {
	if date == "" {
		date = defaultDate
	}
	return date + extension
}

// HTTPSource fetches the CSV files from a web server.
type HTTPSource struct {
	baseURL string
}

// NewHTTPSource creates a source for the files under baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{baseURL: strings.TrimSuffix(baseURL, "/")}
}

type fetchResult struct {
	body []byte
	err  error
}

// get requests target from baseURL. The request itself is bounded by the client
// timeout; if ctx is done first its result is dropped.
func get(ctx context.Context, baseURL, target string) ([]byte, error) {
	done := make(chan fetchResult, 1)
	go func() {
		client := callx.New(callx.Config{
			BaseURL: baseURL,
			Timeout: 10,
		})
		resp := client.Get(target)
		if resp.Code != 200 {
			done <- fetchResult{err: fmt.Errorf("failed to get %s: status %d", target, resp.Code)}
			return
		}
		done <- fetchResult{body: resp.Data}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-done:
		return result.body, result.err
	}
}

// Fetch downloads the file. If ctx is done first the download is abandoned
// and its result dropped.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (string, error) {
	body, err := get(ctx, s.baseURL, "/"+url.PathEscape(name))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DayIndex lists the days available on the data server by reading the links
// of its directory listing. The listing is fetched at most once per refresh
// interval.
type DayIndex struct {
	baseURL   string
	path      string
	extension string
	refresh   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	days    []string
	fetched time.Time
	err     error
}

// NewDayIndex creates an index of the listing at indexURL.
func NewDayIndex(indexURL, extension string, refresh time.Duration) (*DayIndex, error) {
	u, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("index url %q is not absolute", indexURL)
	}
	return &DayIndex{
		baseURL:   u.Scheme + "://" + u.Host,
		path:      u.RequestURI(),
		extension: extension,
		refresh:   refresh,
		now:       time.Now,
	}, nil
}

// Days returns the available dates, newest first. Within the refresh
// interval the last result is returned, failures included, so a slow server
// is asked once per interval.
func (i *DayIndex) Days(ctx context.Context) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.fetched.IsZero() && i.now().Sub(i.fetched) < i.refresh {
		return i.days, i.err
	}

	days, err := i.load(ctx)
	if errors.Is(err, context.Canceled) {
		// Not the server's fault, try again next time.
		return i.days, err
	}
	i.fetched = i.now()
	i.err = err
	if err == nil {
		i.days = days
	}
	return i.days, err
}

func (i *DayIndex) load(ctx context.Context) ([]string, error) {
	body, err := get(ctx, i.baseURL, i.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load day index: %w", err)
	}
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse day index: %w", err)
	}
	links, err := htmlquery.QueryAll(doc, "//a[@href]")
	if err != nil {
		return nil, fmt.Errorf("failed to query day index: %w", err)
	}

	seen := map[string]bool{}
	var days []string
	for _, link := range links {
		href := htmlquery.SelectAttr(link, "href")
		name := path.Base(strings.SplitN(href, "?", 2)[0])
		if !strings.HasSuffix(name, i.extension) {
			continue
		}
		day := strings.TrimSuffix(name, i.extension)
		if day == "" || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	slices.Sort(days)
	slices.Reverse(days)
	return days, nil
}
