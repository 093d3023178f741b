package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer loads a page in headless Chrome and returns the DOM after
// client-side scripts have run. Used as a fallback for script-shell pages.
type Renderer struct {
	timeout time.Duration
	ctxPool sync.Pool
}

// NewRenderer creates a Renderer with a pooled Chrome allocator.
func NewRenderer(timeout time.Duration) *Renderer {
	r := &Renderer{timeout: timeout}
	r.ctxPool.New = func() interface{} {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", ""),
			chromedp.Flag("disable-dev-shm-usage", ""),
		)
		allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
		return allocCtx
	}
	return r
}

// Render navigates to the URL and returns the settled outer HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	allocCtx := r.ctxPool.Get().(context.Context)
	defer r.ctxPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, r.timeout)
	defer timeoutCancel()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
