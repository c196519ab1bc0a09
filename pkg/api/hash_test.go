package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentSet_Hash(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	base := ContentSet{
		Courses:  []Course{{ID: 1, Title: "Rainbow Drawing Fun", AgeGroup: "2-4", CreatedAt: now}},
		Articles: []Article{{ID: 1, Title: "Tips", Category: "tips", Content: "# Tips", CreatedAt: now}},
		Settings: Settings{"site_name": "Happy Art Town", "contact_email": "a@b.c"},
	}

	t.Run("identical sets produce identical hashes", func(t *testing.T) {
		assert.Equal(t, base.Hash(), base.Hash())
	})

	t.Run("settings order does not matter", func(t *testing.T) {
		other := base
		other.Settings = Settings{"contact_email": "a@b.c", "site_name": "Happy Art Town"}
		assert.Equal(t, base.Hash(), other.Hash())
	})

	t.Run("content change alters hash", func(t *testing.T) {
		other := base
		other.Articles = []Article{{ID: 1, Title: "Tips", Category: "tips", Content: "# Tips!", CreatedAt: now}}
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	t.Run("display date is part of the hash", func(t *testing.T) {
		other := base
		other.Articles = []Article{{ID: 1, Title: "Tips", Category: "tips", Content: "# Tips", Date: "Jan 15", CreatedAt: now}}
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	t.Run("field boundaries are delimited", func(t *testing.T) {
		a := ContentSet{Settings: Settings{"ab": "c"}}
		b := ContentSet{Settings: Settings{"a": "bc"}}
		assert.NotEqual(t, a.Hash(), b.Hash())
	})
}

func TestSettingsDefaults(t *testing.T) {
	var s Settings
	assert.Equal(t, DefaultSiteName, s.SiteName())
	assert.Equal(t, DefaultSiteDescription, s.SiteDescription())

	s = Settings{"site_name": "Art Club"}
	assert.Equal(t, "Art Club", s.SiteName())
}

func TestSnapshotUsingFallback(t *testing.T) {
	s := Snapshot{Origins: map[Table]Origin{TableCourses: OriginRemote, TableArticles: OriginRemote}}
	assert.False(t, s.UsingFallback())
	s.Origins[TableArticles] = OriginCache
	assert.True(t, s.UsingFallback())
	s = Snapshot{Error: "boom"}
	assert.True(t, s.UsingFallback())
}
