package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mithrel/arttown/pkg/api"
)

// CachedTable is the last successfully fetched payload of one content table.
type CachedTable struct {
	Table     api.Table
	Payload   []byte
	Digest    string
	FetchedAt time.Time
}

// RefreshRecord is one row of the refresh log.
type RefreshRecord struct {
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	OK      bool      `json:"ok"`
	Message string    `json:"message,omitempty"`
}

// Store caches remote content and records refresh outcomes.
type Store interface {
	SaveTable(ctx context.Context, t CachedTable) error
	// SaveRefresh atomically stores the fetched tables and the refresh record.
	SaveRefresh(ctx context.Context, tables []CachedTable, r RefreshRecord) error
	LoadTable(ctx context.Context, table api.Table) (CachedTable, error)
	AppendRefresh(ctx context.Context, r RefreshRecord) error
	ListRefreshes(ctx context.Context, limit int) ([]RefreshRecord, error)
	Close() error
}

var ErrNotFound = errors.New("not found")

// refreshLogKeep is how many refresh records AppendRefresh retains.
var refreshLogKeep = 500

// Open returns a Store based on a URL: sqlite://path or mem://.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, url)
	case url == "" || strings.HasPrefix(url, "mem://"):
		return newMemStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store url %q", url)
	}
}
