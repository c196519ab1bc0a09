package main

import (
	"fmt"
	mrand "math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mithrel/arttown/pkg/api"
)

// sampleFile mirrors the content.static_file layout.
type sampleFile struct {
	Settings []api.SettingRecord `yaml:"settings"`
	Courses  []api.CourseRecord  `yaml:"courses"`
	Articles []api.ArticleRecord `yaml:"articles"`
}

var (
	ageGroups    = []string{"2-4", "5-8", "9-12"}
	categories   = []string{"tips", "tutorials", "inspiration"}
	difficulties = []string{"Beginner", "Easy", "Medium"}
	emojis       = []string{"🎨", "🖍️", "🦋", "🌻", "🐙", "🚀", "🏰", "🌈"}
	subjects     = []string{"Crayon", "Watercolor", "Clay", "Collage", "Chalk", "Sponge", "Finger Paint", "Sticker"}
	topics       = []string{"Animals", "Castles", "Rockets", "Flowers", "Oceans", "Monsters", "Trains", "Birds"}
)

func pick[T any](r *mrand.Rand, xs []T) T { return xs[r.Intn(len(xs))] }

// body builds a small document exercising headings, lists and paragraphs.
func body(r *mrand.Rand, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\nLet's make something wonderful today!\n\n", title)
	for s := 1; s <= 1+r.Intn(3); s++ {
		fmt.Fprintf(&b, "## Step %d\n", s)
		for i := 0; i < 1+r.Intn(4); i++ {
			fmt.Fprintf(&b, "- Try a %s %s\n", strings.ToLower(pick(r, subjects)), strings.ToLower(pick(r, topics)))
		}
		b.WriteString("\n")
	}
	b.WriteString("### Remember\nThere are no mistakes in art,\nonly happy surprises!\n")
	return b.String()
}

func main() {
	// Deterministic seed for reproducible output
	r := mrand.New(mrand.NewSource(42))
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	out := sampleFile{Settings: []api.SettingRecord{
		{Key: "site_name", Value: "Happy Art Town (sample)"},
		{Key: "site_description", Value: "Generated sample content for local testing."},
	}}

	const courses, articles = 60, 120
	for i := 0; i < courses; i++ {
		out.Courses = append(out.Courses, api.CourseRecord{
			ID:          int64(i + 1),
			Title:       fmt.Sprintf("%s %s", pick(r, subjects), pick(r, topics)),
			Description: "A playful course generated for testing.",
			AgeGroup:    pick(r, ageGroups),
			ImageEmoji:  pick(r, emojis),
			Duration:    fmt.Sprintf("%d mins", 10+5*r.Intn(6)),
			Lessons:     3 + r.Intn(8),
			Difficulty:  pick(r, difficulties),
			IsPublished: r.Intn(10) > 0, // ~10% drafts
			CreatedAt:   base.Add(-time.Duration(i) * 7 * time.Hour),
		})
	}
	for i := 0; i < articles; i++ {
		title := fmt.Sprintf("%s %s Ideas", pick(r, subjects), pick(r, topics))
		out.Articles = append(out.Articles, api.ArticleRecord{
			ID:          int64(i + 1),
			Title:       title,
			Excerpt:     "Quick ideas to get little hands creating.",
			Content:     body(r, title),
			Category:    pick(r, categories),
			ImageEmoji:  pick(r, emojis),
			ReadTime:    fmt.Sprintf("%d min read", 2+r.Intn(6)),
			IsPublished: r.Intn(10) > 0,
			CreatedAt:   base.Add(-time.Duration(i) * 5 * time.Hour),
		})
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}
