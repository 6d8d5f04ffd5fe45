package rendering

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
)

// PDFOptions configures the headless-browser print
type PDFOptions struct {
	Enabled bool
	Timeout time.Duration
}

// PDFStrategy prints the HTML page to PDF in headless Chrome. A disabled
// strategy is unavailable, which keeps browser startup out of default runs.
func PDFStrategy(opts PDFOptions, md goldmark.Markdown, tmpl *template.Template) Strategy {
	return Strategy{
		Name: "chromedp",
		Ext:  ".pdf",
		Render: func(ctx context.Context, doc Document, w io.Writer) error {
			if !opts.Enabled {
				return ErrBackendUnavailable
			}
			markup, err := RenderPage(doc, md, tmpl)
			if err != nil {
				return err
			}
			data, err := printToPDF(ctx, markup, opts.Timeout)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}
}

func printToPDF(ctx context.Context, markup string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

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

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	return buf, nil
}
