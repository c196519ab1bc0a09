package content

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

// Catalog holds the current content snapshot and serves catalog queries.
// It is safe for concurrent use; concurrent refreshes share one load.
type Catalog struct {
	loader *Loader
	sf     singleflight.Group

	mu     sync.RWMutex
	snap   api.Snapshot
	loaded bool
}

func NewCatalog(loader *Loader) *Catalog {
	return &Catalog{loader: loader}
}

// Refresh reloads content and swaps it in.
//
// The shared load is detached from ctx so one departing caller cannot abort
// it for everyone; the remote client's timeout bounds it instead. A caller
// whose ctx ends first gets the previous snapshot when there is one.
func (c *Catalog) Refresh(ctx context.Context) api.Snapshot {
	ch := c.sf.DoChan("refresh", func() (any, error) {
		snap := c.loader.Load(context.WithoutCancel(ctx))
		c.mu.Lock()
		c.snap = snap
		c.loaded = true
		c.mu.Unlock()
		return snap, nil
	})
	select {
	case res := <-ch:
		return res.Val.(api.Snapshot)
	case <-ctx.Done():
		c.mu.RLock()
		snap, ok := c.snap, c.loaded
		c.mu.RUnlock()
		if ok {
			return snap
		}
		res := <-ch
		return res.Val.(api.Snapshot)
	}
}

// Snapshot returns the current snapshot, loading it on first use.
func (c *Catalog) Snapshot(ctx context.Context) api.Snapshot {
	c.mu.RLock()
	snap, ok := c.snap, c.loaded
	c.mu.RUnlock()
	if ok {
		return snap
	}
	return c.Refresh(ctx)
}

func (c *Catalog) Courses(ctx context.Context, ageGroup string) []api.Course {
	return FilterCourses(c.Snapshot(ctx).Courses, ageGroup)
}

func (c *Catalog) Articles(ctx context.Context, category, query string) []api.Article {
	return SearchArticles(FilterArticles(c.Snapshot(ctx).Articles, category), query)
}

func (c *Catalog) Article(ctx context.Context, id int64) (api.Article, error) {
	return FindArticle(c.Snapshot(ctx).Articles, id)
}

// ArticleView is an article with its rendered body and related reading.
type ArticleView struct {
	Article api.Article    `json:"article"`
	Blocks  []render.Block `json:"blocks"`
	Related []api.Article  `json:"related"`
}

func (c *Catalog) ArticleView(ctx context.Context, id int64) (ArticleView, error) {
	return ViewArticle(c.Snapshot(ctx), id)
}

// ViewArticle builds the article view from a single snapshot.
func ViewArticle(snap api.Snapshot, id int64) (ArticleView, error) {
	a, err := FindArticle(snap.Articles, id)
	if err != nil {
		return ArticleView{}, err
	}
	return ArticleView{
		Article: a,
		Blocks:  render.Render(a.Content),
		Related: RelatedArticles(snap.Articles, a, RelatedLimit),
	}, nil
}

// Featured returns the home page selections.
func (c *Catalog) Featured(ctx context.Context) ([]api.Course, []api.Article) {
	return FeaturedOf(c.Snapshot(ctx))
}

func FeaturedOf(snap api.Snapshot) ([]api.Course, []api.Article) {
	return Take(snap.Courses, FeaturedCourses), Take(snap.Articles, FeaturedArticles)
}

func (c *Catalog) Status(ctx context.Context) api.Status {
	return StatusOf(c.Snapshot(ctx))
}
