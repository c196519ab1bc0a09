package render

import "strings"

// BlockKind tags the variant held by a Block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
)

// Block is one structural unit of a rendered document.
// Headings use Level and Text, paragraphs use Text, lists use Items.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
}

// Heading builds a heading block of the given level (1-3).
func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

// Paragraph builds a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// List builds an unordered list block.
func List(items ...string) Block {
	return Block{Kind: BlockList, Items: items}
}

type lineKind int

const (
	lineText lineKind = iota
	lineBlank
	lineHeading1
	lineHeading2
	lineHeading3
	lineListItem
)

const listMarker = "- "

// classify inspects an already trimmed line and returns its kind along with
// the text that follows the recognized marker.
func classify(line string) (lineKind, string) {
	switch {
	case strings.HasPrefix(line, "# "):
		return lineHeading1, line[2:]
	case strings.HasPrefix(line, "## "):
		return lineHeading2, line[3:]
	case strings.HasPrefix(line, "### "):
		return lineHeading3, line[4:]
	case strings.HasPrefix(line, listMarker):
		return lineListItem, line[len(listMarker):]
	case line == "":
		return lineBlank, ""
	default:
		return lineText, line
	}
}

// Render converts a markdown-like document into display blocks.
//
// Only "# ", "## ", "### " headings, "- " list items and plain paragraphs are
// recognized. Anything else is kept verbatim as paragraph text. Render never
// fails; empty or blank input yields no blocks.
func Render(doc string) []Block {
	lines := strings.Split(doc, "\n")
	var (
		out     []Block
		pending []string
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		out = append(out, Paragraph(strings.Join(pending, " ")))
		pending = nil
	}

	for i := 0; i < len(lines); i++ {
		kind, text := classify(strings.TrimSpace(lines[i]))
		switch kind {
		case lineHeading1, lineHeading2, lineHeading3:
			flush()
			out = append(out, Heading(int(kind-lineHeading1)+1, text))
		case lineListItem:
			flush()
			items := []string{text}
			for i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if !strings.HasPrefix(next, listMarker) {
					break
				}
				items = append(items, next[len(listMarker):])
				i++
			}
			out = append(out, List(items...))
		case lineBlank:
			flush()
		default:
			pending = append(pending, text)
		}
	}
	flush()
	return out
}
