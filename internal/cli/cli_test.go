package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

// isolate points every config and data location at a temp dir and clears
// variables that would reach a real backend.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("ARTTOWN_DATA_DIR", filepath.Join(tmp, "data", "arttown"))
	t.Setenv("ARTTOWN_LOG_LEVEL", "error")
	for _, k := range []string{"ARTTOWN_REMOTE_URL", "ARTTOWN_REMOTE_ANON_KEY", "VITE_SUPABASE_URL", "VITE_SUPABASE_ANON_KEY"} {
		t.Setenv(k, "")
	}
	return tmp
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderStdinJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "# Title\nintro\n- a\n- b", "render", "--format", "json")
	require.NoError(t, err)
	var blocks []render.Block
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	assert.Equal(t, []render.Block{render.Heading(1, "Title"), render.Paragraph("intro"), render.List("a", "b")}, blocks)
}

func TestRenderFilePlain(t *testing.T) {
	tmp := isolate(t)
	doc := filepath.Join(tmp, "doc.md")
	require.NoError(t, os.WriteFile(doc, []byte("## Colors\nred\nblue\n"), 0o600))
	out, err := run(t, "", "render", doc)
	require.NoError(t, err)
	assert.Equal(t, "Colors\n------\n\nred blue\n", out)

	out, err = run(t, "", "render", "--format", "markdown", doc)
	require.NoError(t, err)
	assert.Equal(t, "## Colors\n\nred blue\n", out)

	_, err = run(t, "", "render", "--format", "html", doc)
	require.ErrorContains(t, err, `unknown format "html"`)
}

func TestCoursesByAge(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "courses", "--age", "2-4", "--headers")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], "Rainbow Drawing Fun")
	assert.Contains(t, lines[2], "Ocean Adventures")

	_, err = run(t, "", "courses", "--age", "99")
	require.ErrorContains(t, err, "unknown age group")
}

func TestArticlesJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "articles", "--category", "tips", "--format", "json")
	require.NoError(t, err)
	var articles []api.Article
	require.NoError(t, json.Unmarshal([]byte(out), &articles))
	require.Len(t, articles, 2)
	assert.Equal(t, "5 Fun Color Mixing Tips", articles[0].Title)

	out, err = run(t, "", "articles", "--search", "zzzz", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestArticleShow(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "article", "show", "1", "--format", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# 5 Fun Color Mixing Tips\n"))
	assert.Contains(t, out, "## More Articles You Might Like")
	assert.Contains(t, out, "Make Art with Nature (#4)")

	out, err = run(t, "", "article", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "tutorials · 5 min read · Jan 14")

	_, err = run(t, "", "article", "show", "99")
	require.ErrorContains(t, err, "article not found")
	_, err = run(t, "", "article", "show", "abc")
	require.ErrorContains(t, err, "invalid article id")
}

func TestRefreshAndStatus(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "6 courses • 4 articles • 4 settings")

	out, err = run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "courses   static")
	assert.Contains(t, out, "cache courses: empty")
	assert.Contains(t, out, "fallback (static)")

	out, err = run(t, "", "status", "--format", "json", "--history", "1")
	require.NoError(t, err)
	var st struct {
		Courses   int `json:"courses"`
		Refreshes []struct {
			Source string `json:"source"`
		} `json:"refreshes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 6, st.Courses)
	assert.Len(t, st.Refreshes, 1)
}

func TestConfigGenerateAndCheck(t *testing.T) {
	tmp := isolate(t)
	path := filepath.Join(tmp, "arttown.toml")

	out, err := run(t, "", "config", "generate", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = run(t, "", "config", "generate", "-o", path)
	require.ErrorContains(t, err, "config already exists")

	out, err = run(t, "", "config", "generate", "-o", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "Config already up to date")

	out, err = run(t, "", "--config", path, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Config OK ("+path+")")

	bad := filepath.Join(tmp, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[remote]\nurl = \"ftp://x\"\n[render]\nwidth = 0\n"), 0o600))
	_, err = run(t, "", "--config", bad, "config", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote.url must be an http(s) url")
	assert.Contains(t, err.Error(), "render.width must be greater than 0")
}

func TestParseArticleID(t *testing.T) {
	id, err := parseArticleID("4\tMake Art with Nature")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	_, err = parseArticleID("")
	require.Error(t, err)
}
