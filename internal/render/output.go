package render

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/zeebo/blake3"
)

// Markdown re-emits blocks as normalized markdown, one blank line between blocks.
func Markdown(blocks []Block) string {
	return writeMarkdown(blocks, func(s string) string { return s })
}

// EscapedMarkdown is Markdown with every block's text escaped, so a full
// CommonMark parser shows it exactly as Render kept it.
func EscapedMarkdown(blocks []Block) string {
	return writeMarkdown(blocks, EscapeText)
}

// EscapeText backslash-escapes CommonMark ASCII punctuation in s.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf && strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func writeMarkdown(blocks []Block, esc func(string) string) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch blk.Kind {
		case BlockHeading:
			b.WriteString(strings.Repeat("#", blk.Level) + " " + esc(blk.Text) + "\n")
		case BlockList:
			for _, it := range blk.Items {
				b.WriteString(listMarker + esc(it) + "\n")
			}
		default:
			b.WriteString(esc(blk.Text) + "\n")
		}
	}
	return b.String()
}

// Plain renders blocks as terminal plaintext without styling.
func Plain(blocks []Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch blk.Kind {
		case BlockHeading:
			b.WriteString(blk.Text + "\n")
			under := "="
			if blk.Level > 1 {
				under = "-"
			}
			if blk.Level < 3 {
				b.WriteString(strings.Repeat(under, len([]rune(blk.Text))) + "\n")
			}
		case BlockList:
			for _, it := range blk.Items {
				b.WriteString("  • " + it + "\n")
			}
		default:
			b.WriteString(blk.Text + "\n")
		}
	}
	return b.String()
}

// Pretty renders blocks with glamour for terminal display. Block text is
// escaped so inline syntax stays literal.
func Pretty(blocks []Block, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(EscapedMarkdown(blocks))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Digest returns a BLAKE3 hex digest of the raw document.
func Digest(doc string) string {
	sum := blake3.Sum256([]byte(doc))
	return hex.EncodeToString(sum[:])
}
