package content

import (
	"time"

	"github.com/mithrel/arttown/pkg/api"
)

// ArticleDateLayout matches the site's short en-US date ("Jan 15").
const ArticleDateLayout = "Jan 2"

// ShapeCourses converts course rows into display courses.
func ShapeCourses(rows []api.CourseRecord) []api.Course {
	out := make([]api.Course, 0, len(rows))
	for _, c := range rows {
		out = append(out, api.Course{
			ID:          c.ID,
			Title:       c.Title,
			AgeGroup:    c.AgeGroup,
			Image:       c.ImageEmoji,
			Duration:    c.Duration,
			Lessons:     c.Lessons,
			Difficulty:  c.Difficulty,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out
}

// ShapeArticles converts article rows into display articles, formatting the
// created date in loc.
func ShapeArticles(rows []api.ArticleRecord, loc *time.Location) []api.Article {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]api.Article, 0, len(rows))
	for _, a := range rows {
		date := ""
		if !a.CreatedAt.IsZero() {
			date = a.CreatedAt.In(loc).Format(ArticleDateLayout)
		}
		out = append(out, api.Article{
			ID:        a.ID,
			Title:     a.Title,
			Category:  a.Category,
			Image:     a.ImageEmoji,
			Excerpt:   a.Excerpt,
			Content:   a.Content,
			ReadTime:  a.ReadTime,
			Date:      date,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}

// ShapeSettings folds setting rows into a key/value map; later rows win.
func ShapeSettings(rows []api.SettingRecord) api.Settings {
	out := make(api.Settings, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out
}
