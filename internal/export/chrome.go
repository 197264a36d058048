package export

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/cv-builder/internal/logger"
	"github.com/jonathan/cv-builder/internal/rendering"
)

// DefaultTimeout bounds a single export, browser start-up included.
const DefaultTimeout = 60 * time.Second

// Exporter turns a rendered document into a PDF.
type Exporter interface {
	PDF(ctx context.Context, doc *rendering.Document, opts Options) ([]byte, error)
}

// Snapshotter turns a rendered document into a JPEG preview image.
type Snapshotter interface {
	Snapshot(ctx context.Context, doc *rendering.Document, opts Options) ([]byte, error)
}

// ChromeConfig configures the headless browser.
type ChromeConfig struct {
	// RemoteURL is a DevTools websocket URL of a running browser.
	// When empty a local Chrome/Chromium is launched per export.
	RemoteURL string
	// ExecPath overrides the browser binary for local launches.
	ExecPath string
	Timeout  time.Duration
}

// ChromeExporter rasterizes documents in headless Chrome.
type ChromeExporter struct {
	cfg ChromeConfig
	log *logger.Logger
}

// NewChromeExporter creates an exporter. A nil logger discards output.
func NewChromeExporter(cfg ChromeConfig, log *logger.Logger) *ChromeExporter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ChromeExporter{cfg: cfg, log: log}
}

// PDF prints the document with the page box from opts. CSS @page rules in
// the document take precedence.
func (e *ChromeExporter) PDF(ctx context.Context, doc *rendering.Document, opts Options) ([]byte, error) {
	html, err := prepare("pdf", doc, opts)
	if err != nil {
		return nil, err
	}

	width, height := opts.Paper()
	margin := opts.MarginInches()

	var pdf []byte
	err = e.run(ctx, "pdf",
		loadHTML(html),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(opts.Landscape).
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, &Error{Op: "pdf", Message: "browser returned an empty document"}
	}

	e.log.Debug("exported pdf", "bytes", len(pdf), "page_size", opts.PageSize)
	return pdf, nil
}

// Snapshot captures the full page as a JPEG at opts.Scale device pixels per
// CSS pixel.
func (e *ChromeExporter) Snapshot(ctx context.Context, doc *rendering.Document, opts Options) ([]byte, error) {
	html, err := prepare("snapshot", doc, opts)
	if err != nil {
		return nil, err
	}

	width, height := opts.ViewportPixels()

	var img []byte
	err = e.run(ctx, "snapshot",
		chromedp.EmulateViewport(width, height, chromedp.EmulateScale(opts.Scale)),
		loadHTML(html),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&img, opts.JPEGQuality()),
	)
	if err != nil {
		return nil, err
	}

	e.log.Debug("exported snapshot", "bytes", len(img), "scale", opts.Scale)
	return img, nil
}

func prepare(op string, doc *rendering.Document, opts Options) (string, error) {
	if doc == nil {
		return "", &Error{Op: op, Message: "no document"}
	}
	if err := opts.Validate(); err != nil {
		return "", &Error{Op: op, Message: "invalid options", Cause: err}
	}
	html, err := doc.HTML()
	if err != nil {
		return "", &Error{Op: op, Message: "failed to serialize document", Cause: err}
	}
	return html, nil
}

// run executes actions in a fresh browser tab bounded by the configured timeout.
func (e *ChromeExporter) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	var (
		allocCtx context.Context
		cancel   context.CancelFunc
	)
	if e.cfg.RemoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, e.cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if e.cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(e.cfg.ExecPath))
		}
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, opts...)
	}
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		e.log.Warn("browser export failed", "op", op, "error", err, "elapsed", time.Since(start))
		return &Error{Op: op, Message: "browser rendering failed", Cause: err}
	}
	return nil
}

// loadHTML replaces the blank tab's document with html.
func loadHTML(html string) chromedp.Action {
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
	}
}
