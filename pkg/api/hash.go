package api

import (
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the content set.
// Settings are hashed in key order.
func (c ContentSet) Hash() string {
	h := blake3.New()
	field := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	for _, co := range c.Courses {
		field(strconv.FormatInt(co.ID, 10))
		field(co.Title)
		field(co.AgeGroup)
		field(co.Image)
		field(co.Duration)
		field(strconv.Itoa(co.Lessons))
		field(co.Difficulty)
		field(co.Description)
		field(co.CreatedAt.UTC().Format(timeRFC3339Nano))
	}
	h.Write([]byte{1})

	for _, a := range c.Articles {
		field(strconv.FormatInt(a.ID, 10))
		field(a.Title)
		field(a.Category)
		field(a.Image)
		field(a.Excerpt)
		field(a.Content)
		field(a.ReadTime)
		field(a.Date)
		field(a.CreatedAt.UTC().Format(timeRFC3339Nano))
	}
	h.Write([]byte{1})

	keys := make([]string, 0, len(c.Settings))
	for k := range c.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k)
		field(c.Settings[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

const timeRFC3339Nano = "2006-01-02T15:04:05.999999999Z07:00"
