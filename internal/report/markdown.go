package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"insurisk/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownPresenter writes results as a markdown table
type MarkdownPresenter struct{}

func (p *MarkdownPresenter) Present(w io.Writer, results []stats.TestResult) error {
	_, err := w.Write(Markdown(results))
	return err
}

// Markdown renders the results table
func Markdown(results []stats.TestResult) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "| Hypothesis | Test | p-value | Threshold | Decision | Recommendation |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	for _, r := range results {
		rec := r.Recommendation
		if r.Reason != "" {
			rec = rec + " (" + r.Reason + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %s | %s |\n",
			cell(r.Name), cell(string(r.Method)), FormatPValue(r), stats.SignificanceLevel, r.Decision, cell(rec))
	}
	return b.Bytes()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTMLPresenter renders the markdown table as a standalone HTML page
type HTMLPresenter struct {
	Title string
}

func (p *HTMLPresenter) Present(w io.Writer, results []stats.TestResult) error {
	md := append([]byte("# "+p.Title+"\n\n"), Markdown(results)...)

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: p.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})

	_, err := w.Write(markdown.ToHTML(md, mdParser, renderer))
	return err
}
