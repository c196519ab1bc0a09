package content

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mithrel/arttown/pkg/api"
)

//go:embed static.yaml
var bundled []byte

// staticFile is the YAML layout of a static content file.
type staticFile struct {
	Settings []api.SettingRecord `yaml:"settings"`
	Courses  []api.CourseRecord  `yaml:"courses"`
	Articles []api.ArticleRecord `yaml:"articles"`
}

// Static serves content from the bundled dataset or a YAML file.
type Static struct {
	path string
}

// NewStatic returns a static source. An empty path selects the bundled dataset.
func NewStatic(path string) *Static { return &Static{path: path} }

func (s *Static) Name() string { return string(api.OriginStatic) }

// Load never reports per-table errors; a broken override file is a whole-load error.
func (s *Static) Load(ctx context.Context) (api.RawContent, error) {
	data := bundled
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return api.RawContent{}, fmt.Errorf("read static content: %w", err)
		}
		data = b
	}
	rc, err := parseStatic(data)
	if err != nil {
		return api.RawContent{}, err
	}
	return publishedOnly(rc), nil
}

func parseStatic(data []byte) (api.RawContent, error) {
	var f staticFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return api.RawContent{}, fmt.Errorf("parse static content: %w", err)
	}
	return api.RawContent{
		Courses:  f.Courses,
		Articles: f.Articles,
		Settings: f.Settings,
	}, nil
}

// Bundled returns the built-in dataset. It is the last link of every fallback chain.
func Bundled() api.RawContent {
	rc, err := parseStatic(bundled)
	if err != nil {
		panic("content: bundled dataset is invalid: " + err.Error())
	}
	return publishedOnly(rc)
}

// publishedOnly applies the same filter and order the remote query does:
// published rows only, newest first.
func publishedOnly(rc api.RawContent) api.RawContent {
	courses := make([]api.CourseRecord, 0, len(rc.Courses))
	for _, c := range rc.Courses {
		if c.IsPublished {
			courses = append(courses, c)
		}
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })

	articles := make([]api.ArticleRecord, 0, len(rc.Articles))
	for _, a := range rc.Articles {
		if a.IsPublished {
			articles = append(articles, a)
		}
	}
	sort.SliceStable(articles, func(i, j int) bool { return articles[i].CreatedAt.After(articles[j].CreatedAt) })

	rc.Courses = courses
	rc.Articles = articles
	return rc
}
