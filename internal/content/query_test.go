package content

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

func staticSnapshot(t *testing.T) api.Snapshot {
	t.Helper()
	return NewLoader(nil, nil).Load(context.Background())
}

func titles[T any](in []T, title func(T) string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, title(v))
	}
	return out
}

func courseTitle(c api.Course) string   { return c.Title }
func articleTitle(a api.Article) string { return a.Title }

func TestFilterCourses(t *testing.T) {
	courses := staticSnapshot(t).Courses
	assert.Len(t, FilterCourses(courses, FilterAll), 6)
	assert.Len(t, FilterCourses(courses, ""), 6)
	assert.Equal(t, []string{"Rainbow Drawing Fun", "Ocean Adventures"}, titles(FilterCourses(courses, "2-4"), courseTitle))
	assert.Equal(t, []string{"Superhero Comics", "Space Exploration"}, titles(FilterCourses(courses, "9-12"), courseTitle))
	assert.Empty(t, FilterCourses(courses, "13-16"))
}

func TestFilterArticles(t *testing.T) {
	articles := staticSnapshot(t).Articles
	assert.Len(t, FilterArticles(articles, FilterAll), 4)
	assert.Equal(t, []string{"5 Fun Color Mixing Tips", "Make Art with Nature"}, titles(FilterArticles(articles, "tips"), articleTitle))
	assert.Equal(t, []string{"Drawing Your Pet"}, titles(FilterArticles(articles, "tutorials"), articleTitle))
}

func TestRelatedArticles(t *testing.T) {
	articles := staticSnapshot(t).Articles
	tips, err := FindArticle(articles, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Make Art with Nature"}, titles(RelatedArticles(articles, tips, RelatedLimit), articleTitle))

	pet, err := FindArticle(articles, 2)
	require.NoError(t, err)
	assert.Empty(t, RelatedArticles(articles, pet, RelatedLimit))

	many := []api.Article{{ID: 1, Category: "a"}, {ID: 2, Category: "a"}, {ID: 3, Category: "a"}, {ID: 4, Category: "a"}}
	assert.Len(t, RelatedArticles(many, many[0], 2), 2)

	_, err = FindArticle(articles, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTake(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Take([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{1}, Take([]int{1}, 3))
	assert.Empty(t, Take([]int{}, 2))
}

func TestSearch(t *testing.T) {
	snap := staticSnapshot(t)
	got := SearchArticles(snap.Articles, "pet")
	require.NotEmpty(t, got)
	assert.Equal(t, "Drawing Your Pet", got[0].Title)
	assert.Len(t, SearchArticles(snap.Articles, "  "), 4)
	assert.Empty(t, SearchArticles(snap.Articles, "zzzz"))

	gotCourses := SearchCourses(snap.Courses, "ocean")
	require.NotEmpty(t, gotCourses)
	assert.Equal(t, "Ocean Adventures", gotCourses[0].Title)
}

type countingSource struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (c *countingSource) Name() string { return "counting" }
func (c *countingSource) Load(ctx context.Context) (api.RawContent, error) {
	c.calls.Add(1)
	<-c.gate
	return Bundled(), nil
}

func TestCatalogRefreshCoalesces(t *testing.T) {
	src := &countingSource{gate: make(chan struct{})}
	cat := NewCatalog(NewLoader(src, nil))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cat.Refresh(context.Background())
		}()
	}
	// Let the goroutines pile up on the in-flight load before releasing it.
	for src.calls.Load() == 0 {
		runtime.Gosched()
	}
	close(src.gate)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(5))
	assert.Len(t, cat.Snapshot(context.Background()).Courses, 6)
}

func TestCatalogQueries(t *testing.T) {
	cat := NewCatalog(NewLoader(nil, nil))
	ctx := context.Background()

	courses, articles := cat.Featured(ctx)
	assert.Len(t, courses, FeaturedCourses)
	assert.Len(t, articles, FeaturedArticles)

	assert.Len(t, cat.Courses(ctx, "5-8"), 2)
	assert.Len(t, cat.Articles(ctx, "tips", ""), 2)
	assert.Equal(t, "Make Art with Nature", cat.Articles(ctx, "tips", "nature")[0].Title)

	view, err := cat.ArticleView(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, render.Heading(1, "5 Fun Color Mixing Tips"), view.Blocks[0])
	assert.Len(t, view.Related, 1)

	_, err = cat.ArticleView(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	st := cat.Status(ctx)
	assert.Equal(t, 6, st.Courses)
	assert.Equal(t, 4, st.Articles)
	assert.Equal(t, 4, st.Settings)
	assert.True(t, st.Fallback)
}
