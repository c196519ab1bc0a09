package content

import (
	"errors"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mithrel/arttown/pkg/api"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("article not found")

// FilterAll is the filter value that selects everything.
const FilterAll = "all"

const (
	FeaturedCourses  = 3
	FeaturedArticles = 2
	RelatedLimit     = 2
)

// Option is one entry of a filter bar.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// AgeGroups lists the course age filters in display order.
var AgeGroups = []Option{
	{Value: FilterAll, Label: "All Ages", Icon: "👶"},
	{Value: "2-4", Label: "2-4 Years", Icon: "🧸"},
	{Value: "5-8", Label: "5-8 Years", Icon: "🎈"},
	{Value: "9-12", Label: "9-12 Years", Icon: "🎭"},
}

// Categories lists the article category filters in display order.
var Categories = []Option{
	{Value: FilterAll, Label: "All Topics", Icon: "📚"},
	{Value: "tips", Label: "Drawing Tips", Icon: "💡"},
	{Value: "tutorials", Label: "Tutorials", Icon: "📖"},
	{Value: "inspiration", Label: "Inspiration", Icon: "✨"},
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == FilterAll
}

// FilterCourses keeps courses of the given age group; "all" or "" keeps every course.
func FilterCourses(courses []api.Course, ageGroup string) []api.Course {
	if isAll(ageGroup) {
		return courses
	}
	out := make([]api.Course, 0, len(courses))
	for _, c := range courses {
		if c.AgeGroup == ageGroup {
			out = append(out, c)
		}
	}
	return out
}

// FilterArticles keeps articles of the given category; "all" or "" keeps every article.
func FilterArticles(articles []api.Article, category string) []api.Article {
	if isAll(category) {
		return articles
	}
	out := make([]api.Article, 0, len(articles))
	for _, a := range articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// RelatedArticles returns up to n other articles sharing the selected article's category.
func RelatedArticles(articles []api.Article, selected api.Article, n int) []api.Article {
	var out []api.Article
	for _, a := range articles {
		if n > 0 && len(out) == n {
			break
		}
		if a.ID != selected.ID && a.Category == selected.Category {
			out = append(out, a)
		}
	}
	return out
}

// FindArticle looks an article up by id.
func FindArticle(articles []api.Article, id int64) (api.Article, error) {
	for _, a := range articles {
		if a.ID == id {
			return a, nil
		}
	}
	return api.Article{}, ErrNotFound
}

// Take returns at most the first n elements.
func Take[T any](in []T, n int) []T {
	if n < 0 || len(in) <= n {
		return in
	}
	return in[:n]
}

type articleTitles []api.Article

func (a articleTitles) String(i int) string { return a[i].Title }
func (a articleTitles) Len() int            { return len(a) }

// SearchArticles fuzzy-matches titles, best match first. An empty query keeps the input.
func SearchArticles(articles []api.Article, query string) []api.Article {
	query = strings.TrimSpace(query)
	if query == "" {
		return articles
	}
	matches := fuzzy.FindFrom(query, articleTitles(articles))
	out := make([]api.Article, 0, len(matches))
	for _, m := range matches {
		out = append(out, articles[m.Index])
	}
	return out
}

type courseTitles []api.Course

func (c courseTitles) String(i int) string { return c[i].Title }
func (c courseTitles) Len() int            { return len(c) }

// SearchCourses fuzzy-matches course titles, best match first.
func SearchCourses(courses []api.Course, query string) []api.Course {
	query = strings.TrimSpace(query)
	if query == "" {
		return courses
	}
	matches := fuzzy.FindFrom(query, courseTitles(courses))
	out := make([]api.Course, 0, len(matches))
	for _, m := range matches {
		out = append(out, courses[m.Index])
	}
	return out
}

// StatusOf summarizes a snapshot.
func StatusOf(s api.Snapshot) api.Status {
	return api.Status{
		Courses:     len(s.Courses),
		Articles:    len(s.Articles),
		Settings:    len(s.Settings),
		Fallback:    s.UsingFallback(),
		Error:       s.Error,
		Origins:     s.Origins,
		LastUpdated: s.LastUpdated,
	}
}
