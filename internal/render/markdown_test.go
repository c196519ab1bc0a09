package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{"empty", "", nil},
		{"whitespace only", "   \n\n  ", nil},
		{"single heading", "# Title", []Block{Heading(1, "Title")}},
		{"heading levels", "# One\n## Two\n### Three", []Block{
			Heading(1, "One"), Heading(2, "Two"), Heading(3, "Three"),
		}},
		{"list then paragraph", "- a\n- b\n\ntext", []Block{
			List("a", "b"), Paragraph("text"),
		}},
		{"mixed adjacency", "para one\npara two\n## Head\n- item", []Block{
			Paragraph("para one para two"), Heading(2, "Head"), List("item"),
		}},
		{"marker needs space", "-no space", []Block{Paragraph("-no space")}},
		{"heading needs space", "#Title\n##Sub", []Block{Paragraph("#Title ##Sub")}},
		{"four hashes is text", "#### Deep", []Block{Paragraph("#### Deep")}},
		{"indented lines are trimmed", "   # Title  \n\t- one\n   - two  ", []Block{
			Heading(1, "Title"), List("one", "two"),
		}},
		{"blank lines coalesce", "a\n\n\n\nb", []Block{Paragraph("a"), Paragraph("b")}},
		{"leading and trailing blanks", "\n\n# H\n\n", []Block{Heading(1, "H")}},
		{"heading ends list", "- a\n# H\n- b", []Block{List("a"), Heading(1, "H"), List("b")}},
		{"text line ends list", "- a\nafter", []Block{List("a"), Paragraph("after")}},
		{"blank splits lists", "- a\n\n- b", []Block{List("a"), List("b")}},
		{"inline syntax is verbatim", "**bold** and [link](x)\n1. first", []Block{
			Paragraph("**bold** and [link](x) 1. first"),
		}},
		{"text after marker kept verbatim", "#  Spaced\n-  item", []Block{
			Heading(1, " Spaced"), List(" item"),
		}},
		{"crlf line endings", "# Title\r\nbody\r\n", []Block{Heading(1, "Title"), Paragraph("body")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Render(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Render(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind lineKind
		text string
	}{
		{"# a", lineHeading1, "a"},
		{"## a", lineHeading2, "a"},
		{"### a", lineHeading3, "a"},
		{"- a", lineListItem, "a"},
		{"", lineBlank, ""},
		{"-a", lineText, "-a"},
		{"#", lineText, "#"},
	}
	for _, tc := range tests {
		kind, text := classify(tc.line)
		assert.Equal(t, tc.kind, kind, tc.line)
		assert.Equal(t, tc.text, text, tc.line)
	}
}

// Block count equals heading lines + list runs + paragraph runs.
func TestRenderBlockCount(t *testing.T) {
	doc := strings.Join([]string{
		"# Title",
		"intro line one",
		"intro line two",
		"- a",
		"- b",
		"",
		"",
		"## Section",
		"body",
		"- c",
		"tail",
		"### Sub",
	}, "\n")
	// headings: 3, list runs: 2, paragraph runs: 3
	require.Len(t, Render(doc), 8)
}

// Concatenated block text reconstructs all non-blank content.
func TestRenderPreservesContent(t *testing.T) {
	doc := "# A  title\nsome   words\n  more\n- x\n- y z\n\nend"
	var got []string
	for _, b := range Render(doc) {
		switch b.Kind {
		case BlockList:
			got = append(got, b.Items...)
		default:
			got = append(got, b.Text)
		}
	}
	assert.Equal(t, "A  title some   words more x y z end", strings.Join(got, " "))
}

func TestRenderIsDeterministic(t *testing.T) {
	doc := "# T\npara\n- a\n- b"
	first := Render(doc)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Render(doc))
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	doc := "# Title\n\nfirst second\n\n- a\n- b\n\n### Small\n"
	blocks := Render(doc)
	assert.Equal(t, doc, Markdown(blocks))
	assert.Equal(t, blocks, Render(Markdown(blocks)))
}

func TestPlain(t *testing.T) {
	got := Plain([]Block{Heading(1, "Hi"), List("a"), Heading(3, "x")})
	assert.Equal(t, "Hi\n==\n\n  • a\n\nx\n", got)
}

func TestPretty(t *testing.T) {
	out, err := Pretty([]Block{Heading(1, "Colors"), Paragraph("Mix them.")}, 60)
	require.NoError(t, err)
	out = ansi.Strip(out)
	assert.Contains(t, out, "Colors")
	assert.Contains(t, out, "Mix them.")
}

func TestDigest(t *testing.T) {
	assert.Equal(t, Digest("abc"), Digest("abc"))
	assert.NotEqual(t, Digest("abc"), Digest("abd"))
	assert.Len(t, Digest(""), 64)
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `\*\*bold\*\* 1\. \[x\]\(y\)`, EscapeText("**bold** 1. [x](y)"))
	assert.Equal(t, "plain words 🎨", EscapeText("plain words 🎨"))
	assert.Equal(t, "# A\n\n\\`\\`\\`\n\n- \\-x\n", EscapedMarkdown([]Block{Heading(1, "A"), Paragraph("```"), List("-x")}))
}

func TestPrettyKeepsInlineSyntaxLiteral(t *testing.T) {
	blocks := Render("**bold** and 1. first\n\n```\n\n# After")
	require.Equal(t, []Block{Paragraph("**bold** and 1. first"), Paragraph("```"), Heading(1, "After")}, blocks)

	out, err := Pretty(blocks, 60)
	require.NoError(t, err)
	out = ansi.Strip(out)
	assert.Contains(t, out, "**bold** and 1. first")
	assert.Contains(t, out, "```")
	assert.Contains(t, out, "After")
	// The fence paragraph must not swallow the heading into a code block.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "After") {
			assert.NotContains(t, line, "    # After")
		}
	}
}
