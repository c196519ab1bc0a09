package content

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mithrel/arttown/internal/db"
	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

// Source supplies raw content rows.
type Source interface {
	Name() string
	Load(ctx context.Context) (api.RawContent, error)
}

// Loader resolves each table through the chain primary -> cache -> fallback.
type Loader struct {
	primary  Source
	fallback Source
	cache    db.Store
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
	readOnly bool
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

func WithCache(s db.Store) LoaderOption            { return func(l *Loader) { l.cache = s } }
func WithLocation(loc *time.Location) LoaderOption { return func(l *Loader) { l.loc = loc } }
func WithLogger(log *zap.Logger) LoaderOption      { return func(l *Loader) { l.log = log } }
func WithClock(now func() time.Time) LoaderOption  { return func(l *Loader) { l.now = now } }

// ReadOnly keeps loads from writing the cache or the refresh log.
func ReadOnly() LoaderOption { return func(l *Loader) { l.readOnly = true } }

// NewLoader builds a loader. primary may be nil (static-only site); a nil
// fallback selects the bundled dataset.
func NewLoader(primary, fallback Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		primary:  primary,
		fallback: fallback,
		loc:      time.UTC,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load never fails: every table ends up with rows from some link of the chain.
// Snapshot.Error carries the primary's whole-load failure, if any. A load
// whose ctx is done is served from fallbacks without an error and is not
// logged to the cache.
func (l *Loader) Load(ctx context.Context) api.Snapshot {
	now := l.now()

	var (
		rc  api.RawContent
		err error = ErrUnconfigured
	)
	if l.primary != nil {
		rc, err = l.primary.Load(ctx)
	}
	// An abandoned load says nothing about the backend.
	aborted := ctx.Err() != nil
	if aborted {
		err = ErrUnconfigured
	}
	if err != nil && !errors.Is(err, ErrUnconfigured) {
		l.log.Warn("content load failed, using fallback", zap.Error(err))
	}

	var fb *api.RawContent
	fallback := func() api.RawContent {
		if fb != nil {
			return *fb
		}
		var got api.RawContent
		var ferr error = ErrUnconfigured
		if l.fallback != nil {
			got, ferr = l.fallback.Load(ctx)
		}
		if ferr != nil {
			if l.fallback != nil {
				l.log.Warn("static content unavailable, using bundled dataset", zap.Error(ferr))
			}
			got = Bundled()
		}
		fb = &got
		return got
	}

	snap := api.Snapshot{Origins: make(map[api.Table]api.Origin, len(api.Tables)), LastUpdated: now}
	var fresh []db.CachedTable
	var out api.RawContent
	for _, t := range api.Tables {
		tableErr := err
		if tableErr == nil {
			tableErr = rc.Err(t)
		}
		if tableErr == nil {
			snap.Origins[t] = api.OriginRemote
			copyTable(&out, rc, t)
			if ct, merr := cacheEntry(rc, t, now); merr == nil {
				fresh = append(fresh, ct)
			}
			continue
		}
		if err == nil {
			l.log.Warn("table load failed, using fallback", zap.String("table", string(t)), zap.Error(tableErr))
		}
		if l.fromCache(context.WithoutCancel(ctx), &out, t) {
			snap.Origins[t] = api.OriginCache
			continue
		}
		snap.Origins[t] = api.OriginStatic
		copyTable(&out, fallback(), t)
	}

	if err != nil && !errors.Is(err, ErrUnconfigured) {
		snap.Error = err.Error()
	}
	snap.Courses = ShapeCourses(out.Courses)
	snap.Articles = ShapeArticles(out.Articles, l.loc)
	snap.Settings = ShapeSettings(out.Settings)
	snap.Digest = snap.ContentSet.Hash()

	if l.cache != nil && !aborted && !l.readOnly {
		rec := db.RefreshRecord{Time: now, Source: originSummary(snap.Origins), OK: !snap.UsingFallback(), Message: snap.Error}
		if serr := l.cache.SaveRefresh(ctx, fresh, rec); serr != nil {
			l.log.Warn("content cache write failed", zap.Error(serr))
		}
	}
	l.log.Info("content loaded",
		zap.String("origins", originSummary(snap.Origins)),
		zap.Int("courses", len(snap.Courses)),
		zap.Int("articles", len(snap.Articles)),
		zap.Int("settings", len(snap.Settings)))
	return snap
}

func (l *Loader) fromCache(ctx context.Context, out *api.RawContent, t api.Table) bool {
	if l.cache == nil {
		return false
	}
	ct, err := l.cache.LoadTable(ctx, t)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			l.log.Warn("content cache read failed", zap.String("table", string(t)), zap.Error(err))
		}
		return false
	}
	switch t {
	case api.TableCourses:
		err = json.Unmarshal(ct.Payload, &out.Courses)
	case api.TableArticles:
		err = json.Unmarshal(ct.Payload, &out.Articles)
	case api.TableSettings:
		err = json.Unmarshal(ct.Payload, &out.Settings)
	}
	if err != nil {
		l.log.Warn("content cache entry is corrupt", zap.String("table", string(t)), zap.Error(err))
		return false
	}
	return true
}

func copyTable(dst *api.RawContent, src api.RawContent, t api.Table) {
	switch t {
	case api.TableCourses:
		dst.Courses = src.Courses
	case api.TableArticles:
		dst.Articles = src.Articles
	case api.TableSettings:
		dst.Settings = src.Settings
	}
}

func cacheEntry(rc api.RawContent, t api.Table, now time.Time) (db.CachedTable, error) {
	var rows any
	switch t {
	case api.TableCourses:
		rows = rc.Courses
	case api.TableArticles:
		rows = rc.Articles
	default:
		rows = rc.Settings
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return db.CachedTable{}, err
	}
	return db.CachedTable{Table: t, Payload: payload, Digest: render.Digest(string(payload)), FetchedAt: now}, nil
}

// originSummary renders origins as "remote" when uniform, else "table=origin,...".
func originSummary(origins map[api.Table]api.Origin) string {
	var first api.Origin
	uniform := true
	parts := make([]string, 0, len(origins))
	for t, o := range origins {
		if first == "" {
			first = o
		} else if o != first {
			uniform = false
		}
		parts = append(parts, string(t)+"="+string(o))
	}
	if uniform {
		return string(first)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
