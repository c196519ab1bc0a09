package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

const (
	courseHeader  = "id\ttitle\tages\tdifficulty\tlessons\tduration\n"
	articleHeader = "id\ttitle\tcategory\tread_time\tdate\n"
)

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func WritePlainCourses(w io.Writer, courses []api.Course, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, courseHeader)
	}
	for _, c := range courses {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			c.ID, esc(c.Title), esc(c.AgeGroup), esc(c.Difficulty), c.Lessons, esc(c.Duration))
	}
	return tw.Flush()
}

func WritePlainArticles(w io.Writer, articles []api.Article, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, articleHeader)
	}
	for _, a := range articles {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			a.ID, esc(a.Title), esc(a.Category), esc(a.ReadTime), esc(a.Date))
	}
	return tw.Flush()
}

// WritePlainArticle prints an article header, its rendered body and the
// related reading list.
func WritePlainArticle(w io.Writer, v content.ArticleView) error {
	a := v.Article
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", a.Image, a.Title)
	fmt.Fprintf(&b, "%s · %s · %s\n\n", a.Category, a.ReadTime, a.Date)
	b.WriteString(render.Plain(v.Blocks))
	if len(v.Related) > 0 {
		b.WriteString("\nMore articles you might like:\n")
		for _, r := range v.Related {
			fmt.Fprintf(&b, "  %d  %s %s\n", r.ID, r.Image, r.Title)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WritePlainStatus prints the content summary line plus per-table origins.
func WritePlainStatus(w io.Writer, st api.Status, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "content\t%d courses • %d articles • %d settings\n", st.Courses, st.Articles, st.Settings)
	for _, t := range api.Tables {
		if o, ok := st.Origins[t]; ok {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", t, o)
		}
	}
	if !st.LastUpdated.IsZero() {
		_, _ = fmt.Fprintf(tw, "updated\t%s\n", humanize.RelTime(st.LastUpdated, now, "ago", "from now"))
	}
	if st.Error != "" {
		_, _ = fmt.Fprintf(tw, "error\t%s\n", esc(st.Error))
	}
	return tw.Flush()
}
