package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
)

// Render loads the dashboard page for date in a headless browser and returns
// a PNG screenshot of it.
func Render(handler http.Handler, date string, size ScreenshotSize) ([]byte, error) {
	ts := httptest.NewServer(handler)
	defer ts.Close()

	page := ts.URL + "/"
	if date != "" {
		page += "?date=" + url.QueryEscape(date)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.DisableGPU,
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, time.Minute)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(size.Width), int64(size.Height)),
		chromedp.Navigate(page),
		chromedp.WaitVisible("#charts", chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.CaptureScreenshot(&buf),
	); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	return buf, nil
}
