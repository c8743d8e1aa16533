// Package fetch - browser.go provides headless browser rendering for
// script-heavy job boards.
package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider a plain
// HTTP fetch successful. Shorter content usually means the posting renders
// client-side and needs a browser.
const MinContentLength = 500

// ShouldUseBrowser reports whether the extracted text is too short to be a
// real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered
// HTML. Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to finish
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners when present, ignore when not
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	log.Printf("[fetch] browser rendered %s (%d bytes)", url, len(html))
	return html, nil
}

// CapturePosting fetches a posting URL and returns its cleaned text. Plain
// HTTP is tried first with board-specific selectors; if the result looks
// like an unrendered shell, the page is re-fetched through a headless
// browser.
func CapturePosting(ctx context.Context, urlStr string, opts *Options) (string, error) {
	platform := DetectPlatform(urlStr)
	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	result, err := URL(ctx, urlStr, opts)
	var text string
	if err == nil {
		text, err = ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	}
	if err == nil && !ShouldUseBrowser(text) {
		return text, nil
	}

	html, browserErr := WithBrowser(ctx, urlStr, DefaultTimeout)
	if browserErr != nil {
		if err != nil {
			return "", fmt.Errorf("posting capture failed: %w", err)
		}
		return "", fmt.Errorf("posting capture failed: %w", browserErr)
	}

	text, err = ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", fmt.Errorf("failed to extract posting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("posting page %s yielded no text", urlStr)
	}
	return text, nil
}
