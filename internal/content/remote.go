package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mithrel/arttown/pkg/api"
)

// ErrUnconfigured is returned when the remote backend URL or key is missing.
var ErrUnconfigured = errors.New("remote content source is not configured")

// FetchError describes a failed table request.
type FetchError struct {
	Table   api.Table
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %s", e.Table, e.Message)
	}
	return fmt.Sprintf("fetch %s: status %d: %s", e.Table, e.Status, e.Message)
}

// Remote reads content tables from a PostgREST endpoint (Supabase REST API).
type Remote struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewRemote(baseURL, anonKey string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		anonKey:    strings.TrimSpace(anonKey),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Name() string { return string(api.OriginRemote) }

// Configured reports whether both the URL and the key are set.
func (r *Remote) Configured() bool { return r.baseURL != "" && r.anonKey != "" }

// Load fetches settings, published courses and published articles
// concurrently. Table failures are reported per table in RawContent.Errs.
func (r *Remote) Load(ctx context.Context) (api.RawContent, error) {
	if !r.Configured() {
		return api.RawContent{}, ErrUnconfigured
	}
	var (
		rc   api.RawContent
		errs [3]error
		g    errgroup.Group
	)
	published := url.Values{
		"is_published": {"eq.true"},
		"order":        {"created_at.desc"},
	}
	g.Go(func() error {
		errs[0] = r.fetch(ctx, api.TableSettings, nil, &rc.Settings)
		return nil
	})
	g.Go(func() error {
		errs[1] = r.fetch(ctx, api.TableCourses, published, &rc.Courses)
		return nil
	})
	g.Go(func() error {
		errs[2] = r.fetch(ctx, api.TableArticles, published, &rc.Articles)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return api.RawContent{}, err
	}
	for i, t := range []api.Table{api.TableSettings, api.TableCourses, api.TableArticles} {
		if errs[i] == nil {
			continue
		}
		if rc.Errs == nil {
			rc.Errs = make(map[api.Table]error)
		}
		rc.Errs[t] = errs[i]
	}
	return rc, nil
}

func (r *Remote) fetch(ctx context.Context, table api.Table, filter url.Values, out any) error {
	q := url.Values{"select": {"*"}}
	for k, v := range filter {
		q[k] = v
	}
	u := r.baseURL + "/rest/v1/" + string(table) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{Table: table, Message: err.Error()}
	}
	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("Authorization", "Bearer "+r.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &FetchError{Table: table, Message: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &FetchError{Table: table, Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode/100 != 2 {
		return &FetchError{Table: table, Status: resp.StatusCode, Message: errorMessage(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Table: table, Status: resp.StatusCode, Message: "decode: " + err.Error()}
	}
	return nil
}

// errorMessage extracts the PostgREST error message, falling back to the raw body.
func errorMessage(body []byte) string {
	var pe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &pe); err == nil && pe.Message != "" {
		return pe.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
