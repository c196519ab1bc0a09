package present

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/present/format"
	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeMarkdown
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Width      int
}

// ParseMode parses "plain", "pretty", "json" or "markdown".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "markdown", "md":
		return ModeMarkdown, true
	default:
		return ModePlain, false
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// DetectMode picks pretty output for terminals and plain otherwise.
func DetectMode(w io.Writer) Mode {
	if IsTerminal(w) {
		return ModePretty
	}
	return ModePlain
}

// TerminalWidth returns the width of w when it is a terminal, else fallback.
func TerminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// RenderBlocks renders a standalone document.
func RenderBlocks(w io.Writer, blocks []render.Block, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		if blocks == nil {
			blocks = []render.Block{}
		}
		return format.WriteJSON(w, blocks, opts.JSONIndent)
	case ModeMarkdown:
		_, err := io.WriteString(w, render.Markdown(blocks))
		return err
	case ModePretty:
		out, err := render.Pretty(blocks, opts.Width)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := io.WriteString(w, render.Plain(blocks))
		return err
	}
}

// RenderCourses renders a course listing. Pretty falls back to the plain table.
func RenderCourses(w io.Writer, courses []api.Course, opts Options) error {
	if opts.Mode == ModeJSON {
		return format.WriteJSON(w, nonNil(courses), opts.JSONIndent)
	}
	return format.WritePlainCourses(w, courses, opts.Headers)
}

// RenderArticles renders an article listing. Pretty falls back to the plain table.
func RenderArticles(w io.Writer, articles []api.Article, opts Options) error {
	if opts.Mode == ModeJSON {
		return format.WriteJSON(w, nonNil(articles), opts.JSONIndent)
	}
	return format.WritePlainArticles(w, articles, opts.Headers)
}

// RenderArticle renders one article with its body and related reading.
func RenderArticle(w io.Writer, v content.ArticleView, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, v, opts.JSONIndent)
	case ModeMarkdown:
		return format.WriteMarkdownArticle(w, v)
	case ModePretty:
		return format.WritePrettyArticle(w, v, opts.Width)
	default:
		return format.WritePlainArticle(w, v)
	}
}

// RenderStatus renders the content summary.
func RenderStatus(w io.Writer, st api.Status, opts Options) error {
	if opts.Mode == ModeJSON {
		return format.WriteJSON(w, st, opts.JSONIndent)
	}
	return format.WritePlainStatus(w, st, time.Now())
}

// RenderJSON writes v as JSON regardless of mode.
func RenderJSON(w io.Writer, v any, opts Options) error {
	return format.WriteJSON(w, v, opts.JSONIndent)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
