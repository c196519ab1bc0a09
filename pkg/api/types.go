package api

import "time"

// CourseRecord is a row of the hosted "courses" table.
type CourseRecord struct {
	ID          int64     `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	AgeGroup    string    `json:"age_group" yaml:"age_group"`
	ImageEmoji  string    `json:"image_emoji" yaml:"image_emoji"`
	Duration    string    `json:"duration" yaml:"duration"`
	Lessons     int       `json:"lessons" yaml:"lessons"`
	Difficulty  string    `json:"difficulty" yaml:"difficulty"`
	IsPublished bool      `json:"is_published" yaml:"is_published"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// ArticleRecord is a row of the hosted "articles" table.
type ArticleRecord struct {
	ID          int64     `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Excerpt     string    `json:"excerpt" yaml:"excerpt"`
	Content     string    `json:"content" yaml:"content"`
	Category    string    `json:"category" yaml:"category"`
	ImageEmoji  string    `json:"image_emoji" yaml:"image_emoji"`
	ReadTime    string    `json:"read_time" yaml:"read_time"`
	IsPublished bool      `json:"is_published" yaml:"is_published"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// SettingRecord is a row of the hosted "settings" table.
type SettingRecord struct {
	Key         string `json:"key" yaml:"key"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Course is the display shape of a course.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	AgeGroup    string    `json:"ageGroup"`
	Image       string    `json:"image"`
	Duration    string    `json:"duration"`
	Lessons     int       `json:"lessons"`
	Difficulty  string    `json:"difficulty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Article is the display shape of an article. Date is the short en-US
// created date ("Jan 15").
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	ReadTime  string    `json:"readTime"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DefaultSiteName        = "Happy Art Town"
	DefaultSiteDescription = "Where creativity comes alive! Join thousands of young artists learning to draw, paint, and create amazing art!"
)

// Settings maps setting keys to values.
type Settings map[string]string

func (s Settings) SiteName() string {
	if v := s["site_name"]; v != "" {
		return v
	}
	return DefaultSiteName
}

func (s Settings) SiteDescription() string {
	if v := s["site_description"]; v != "" {
		return v
	}
	return DefaultSiteDescription
}

// Table names the hosted tables.
type Table string

const (
	TableCourses  Table = "courses"
	TableArticles Table = "articles"
	TableSettings Table = "settings"
)

// Tables lists every content table in load order.
var Tables = []Table{TableSettings, TableCourses, TableArticles}

// RawContent is what a content source returns: rows per table and the
// per-table failure, if any.
type RawContent struct {
	Courses  []CourseRecord
	Articles []ArticleRecord
	Settings []SettingRecord
	Errs     map[Table]error
}

// Err returns the failure recorded for table t.
func (r RawContent) Err(t Table) error {
	if r.Errs == nil {
		return nil
	}
	return r.Errs[t]
}

// ContentSet is the shaped content handed to the presentation layer.
type ContentSet struct {
	Courses  []Course  `json:"courses"`
	Articles []Article `json:"articles"`
	Settings Settings  `json:"settings"`
}

// Origin tells where a table's data came from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginCache  Origin = "cache"
	OriginStatic Origin = "static"
)

// Snapshot is one completed content load.
type Snapshot struct {
	ContentSet
	Origins     map[Table]Origin `json:"origins"`
	Error       string           `json:"error,omitempty"`
	LastUpdated time.Time        `json:"last_updated"`
	Digest      string           `json:"digest"`
}

// UsingFallback reports whether any table was served from cache or static data.
func (s Snapshot) UsingFallback() bool {
	for _, o := range s.Origins {
		if o != OriginRemote {
			return true
		}
	}
	return s.Error != ""
}

// Status summarizes a snapshot the way the site's data-status bar does.
type Status struct {
	Courses     int              `json:"courses"`
	Articles    int              `json:"articles"`
	Settings    int              `json:"settings"`
	Fallback    bool             `json:"fallback"`
	Error       string           `json:"error,omitempty"`
	Origins     map[Table]Origin `json:"origins"`
	LastUpdated time.Time        `json:"last_updated"`
}
