package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/render"
)

// ArticleMarkdown re-emits an article as normalized markdown with a metadata
// quote under the body.
func ArticleMarkdown(v content.ArticleView) string {
	return articleMarkdown(v, render.Markdown(v.Blocks), func(s string) string { return s })
}

func articleMarkdown(v content.ArticleView, body string, esc func(string) string) string {
	a := v.Article
	var b strings.Builder
	b.WriteString(body)
	fmt.Fprintf(&b, "\n---\n\n> %s **%s** | %s | %s\n", a.Image, esc(a.Category), esc(a.ReadTime), esc(a.Date))
	if len(v.Related) > 0 {
		b.WriteString("\n## More Articles You Might Like\n\n")
		for _, r := range v.Related {
			fmt.Fprintf(&b, "- %s %s (#%d)\n", r.Image, esc(r.Title), r.ID)
		}
	}
	return b.String()
}

// WritePrettyArticle renders an article with glamour. Article text is
// escaped so glamour does not reinterpret it.
func WritePrettyArticle(w io.Writer, v content.ArticleView, width int) error {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(articleMarkdown(v, render.EscapedMarkdown(v.Blocks), render.EscapeText))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func WriteMarkdownArticle(w io.Writer, v content.ArticleView) error {
	_, err := io.WriteString(w, ArticleMarkdown(v))
	return err
}
