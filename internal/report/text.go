package report

import (
	"fmt"
	"io"
	"strings"

	"insurisk/domain/stats"
)

const defaultWidth = 60

// TextPresenter writes one fixed-width framed block per result
type TextPresenter struct {
	Width int
}

func NewTextPresenter() *TextPresenter {
	return &TextPresenter{Width: defaultWidth}
}

func (p *TextPresenter) Present(w io.Writer, results []stats.TestResult) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, p.Block(r)); err != nil {
			return err
		}
	}
	return nil
}

// Block renders a single result
func (p *TextPresenter) Block(r stats.TestResult) string {
	width := p.Width
	if width <= 0 {
		width = defaultWidth
	}
	heavy := strings.Repeat("=", width)
	light := strings.Repeat("-", width)

	var b strings.Builder
	b.WriteString(heavy + "\n")
	b.WriteString(center(r.Name, width) + "\n")
	b.WriteString(light + "\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%-16s%s\n", label+":", value)
	}
	if r.Method != stats.MethodNone {
		field("Test", string(r.Method))
	}
	if len(r.Groups) > 0 {
		field("Groups", strings.Join(r.Groups, ", "))
	}
	field("P-Value", FormatPValue(r))
	field("Threshold", fmt.Sprintf("%.2f", stats.SignificanceLevel))
	field("Decision", string(r.Decision))
	if r.Reason != "" {
		for j, line := range wrap(r.Reason, width-16) {
			if j == 0 {
				field("Reason", line)
			} else {
				b.WriteString(strings.Repeat(" ", 16) + line + "\n")
			}
		}
	}

	b.WriteString(light + "\n")
	for _, line := range wrap(r.Recommendation, width) {
		b.WriteString(line + "\n")
	}
	b.WriteString(heavy + "\n")
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// wrap breaks text into lines of at most width runes, on word boundaries
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len([]rune(line))+1+len([]rune(word)) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
