package dashboard

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/application"
	"hrintake/internal/errors"
	"hrintake/internal/notify"
	"hrintake/internal/types"
)

type fakeAPI struct {
	mu        sync.Mutex
	counts    types.Counts
	countsErr error
	list      func(ctx context.Context, q types.ListQuery) (types.ListResponse, error)
	queries   []types.ListQuery
	pdf       []byte
	pdfErr    error
	emails    []types.EmailRequest
	rejectTo  map[string]bool
}

func (f *fakeAPI) GetCounts(context.Context) (types.Counts, error) {
	return f.counts, f.countsErr
}

func (f *fakeAPI) ListApplications(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	list := f.list
	f.mu.Unlock()
	return list(ctx, q)
}

func (f *fakeAPI) DownloadPDF(context.Context, string) ([]byte, error) {
	return f.pdf, f.pdfErr
}

func (f *fakeAPI) SendEmail(_ context.Context, email types.EmailRequest) (types.EmailResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, email)
	if f.rejectTo[email.To] {
		return types.EmailResponse{}, errors.NewNetworkError(errors.ErrCodeRemoteRequestFailed, "rejected", nil)
	}
	return types.EmailResponse{Message: "ok"}, nil
}

func newTestLogger() *errors.Logger {
	return errors.NewLoggerWithHandler(slog.NewTextHandler(io.Discard, nil))
}

func listing(n, totalPages int) func(context.Context, types.ListQuery) (types.ListResponse, error) {
	apps := make([]application.Submitted, n)
	for i := range apps {
		apps[i] = application.Submitted{
			ID:     fmt.Sprintf("app-%d", i+1),
			Record: application.Record{FullName: fmt.Sprintf("Applicant %d", i+1), Email: fmt.Sprintf("a%d@example.com", i+1)},
		}
	}
	return func(context.Context, types.ListQuery) (types.ListResponse, error) {
		return types.ListResponse{Data: apps, TotalPages: totalPages}, nil
	}
}

func newTestBoard(api API) *Board {
	return NewBoard(api, Options{PageSizes: []int{5, 10, 20}, PageSize: 10}, notify.NewQueue(notify.DefaultTTL, nil), newTestLogger())
}

func lastMessage(t *testing.T, b *Board) notify.Entry {
	t.Helper()
	entries := b.Notifications().List()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func TestBulkEmail(t *testing.T) {
	tests := []struct {
		name     string
		rejectTo map[string]bool
		wantSent int
		wantMsg  string
	}{
		{name: "all succeed", wantSent: 3, wantMsg: "Emails sent: 3/3"},
		{name: "one rejected", rejectTo: map[string]bool{"a5@example.com": true}, wantSent: 2, wantMsg: "Emails sent: 2/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{list: listing(10, 1), rejectTo: tt.rejectTo}
			b := newTestBoard(api)
			_, err := b.Refresh(context.Background())
			require.NoError(t, err)

			result, err := b.BulkEmail(context.Background(), []string{"app-2", "app-5", "app-9"}, types.EmailRequest{
				Message: "We would like to invite you.",
				Status:  application.StatusInterview,
			})
			require.NoError(t, err)

			assert.Len(t, api.emails, 3)
			assert.Equal(t, []string{"a2@example.com", "a5@example.com", "a9@example.com"},
				[]string{api.emails[0].To, api.emails[1].To, api.emails[2].To})
			assert.Equal(t, "app-5", api.emails[1].ApplicationID)
			assert.Equal(t, "Application update - Applicant 9", api.emails[2].Subject)
			assert.Equal(t, tt.wantSent, result.Sent)
			assert.Equal(t, 3, result.Total)

			last := lastMessage(t, b)
			assert.Equal(t, notify.KindSuccess, last.Kind)
			assert.Equal(t, tt.wantMsg, last.Message)
		})
	}
}

func TestBulkEmailRequiresSelection(t *testing.T) {
	b := newTestBoard(&fakeAPI{list: listing(1, 1)})
	_, err := b.BulkEmail(context.Background(), nil, types.EmailRequest{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingRequired))
}

func TestBulkEmailCountsUnknownIDsAsFailed(t *testing.T) {
	api := &fakeAPI{list: listing(2, 1)}
	b := newTestBoard(api)
	_, err := b.Refresh(context.Background())
	require.NoError(t, err)

	result, err := b.BulkEmail(context.Background(), []string{"app-1", "missing", "app-1"}, types.EmailRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []string{"missing"}, result.Failed)
	assert.Len(t, api.emails, 1)
}

func TestRefreshDiscardsSupersededResponse(t *testing.T) {
	entered := make(chan struct{})
	var calls int
	var mu sync.Mutex

	stale := listing(3, 4)
	fresh := listing(2, 1)
	api := &fakeAPI{}
	api.list = func(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(entered)
			<-ctx.Done()
			resp, _ := stale(ctx, q)
			return resp, nil
		}
		return fresh(ctx, q)
	}
	b := newTestBoard(api)

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Refresh(context.Background())
		errCh <- err
	}()
	<-entered

	page, err := b.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Applications, 2)

	assert.ErrorIs(t, <-errCh, ErrSuperseded)
	assert.Len(t, b.Visible(), 2)
	assert.Equal(t, 1, b.Page().TotalPages)
}

func TestRefreshFailureNotifies(t *testing.T) {
	api := &fakeAPI{list: func(context.Context, types.ListQuery) (types.ListResponse, error) {
		return types.ListResponse{}, stderrors.New("boom")
	}}
	b := newTestBoard(api)

	_, err := b.Refresh(context.Background())
	require.Error(t, err)
	last := lastMessage(t, b)
	assert.Equal(t, notify.KindError, last.Kind)
	assert.Equal(t, "Failed to load applications", last.Message)
}

func TestPaging(t *testing.T) {
	api := &fakeAPI{list: listing(10, 3)}
	b := newTestBoard(api)
	_, err := b.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, b.PrevPage())
	assert.Equal(t, 2, b.NextPage())
	assert.Equal(t, 3, b.NextPage())
	assert.Equal(t, 3, b.NextPage())
	assert.Equal(t, 2, b.PrevPage())

	b.SetFilters(Filters{Gender: "Female"})
	assert.Equal(t, 1, b.Page().Page)

	b.NextPage()
	require.NoError(t, b.SetLimit(20))
	assert.Equal(t, 1, b.Page().Page)
	assert.Equal(t, 20, b.Page().Limit)

	err = b.SetLimit(7)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFieldValue))

	b.NextPage()
	_, err = b.Refresh(context.Background())
	require.NoError(t, err)
	last := api.queries[len(api.queries)-1]
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, 20, last.Limit)
	assert.Equal(t, "Female", last.Gender)
}

func TestLoadCountsKeepsZerosOnFailure(t *testing.T) {
	api := &fakeAPI{countsErr: stderrors.New("down")}
	b := newTestBoard(api)

	counts, err := b.LoadCounts(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.Counts{}, counts)
	assert.Equal(t, "Failed to fetch counts", lastMessage(t, b).Message)

	api.countsErr = nil
	api.counts = types.Counts{Teaching: 4, NonTeaching: 2, Admin: 1, Total: 7}
	counts, err = b.LoadCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts.Total)
	assert.Equal(t, counts, b.Counts())
}

func TestDownloadPDF(t *testing.T) {
	dir := t.TempDir()
	api := &fakeAPI{pdf: []byte("%PDF-1.4")}
	b := newTestBoard(api)

	path, err := b.DownloadPDF(context.Background(), "abc123", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Application_abc123.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "PDF downloaded", lastMessage(t, b).Message)

	_, err = b.DownloadPDF(context.Background(), "../escape", dir)
	require.Error(t, err)
	assert.Equal(t, "Failed to download PDF", lastMessage(t, b).Message)

	api.pdfErr = stderrors.New("gone")
	_, err = b.DownloadPDF(context.Background(), "abc123", dir)
	require.Error(t, err)
}

func TestSendEmail(t *testing.T) {
	api := &fakeAPI{list: listing(1, 1)}
	b := newTestBoard(api)
	_, err := b.Refresh(context.Background())
	require.NoError(t, err)

	app, ok := b.Find("app-1")
	require.True(t, ok)
	draft := b.DraftEmail(app)
	assert.Equal(t, "a1@example.com", draft.To)
	assert.Equal(t, application.StatusInterview, draft.Status)
	assert.Equal(t, "Application update - Applicant 1", draft.Subject)

	draft.Message = "See you soon"
	_, err = b.SendEmail(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "Email sent and logged", lastMessage(t, b).Message)

	draft.To = ""
	_, err = b.SendEmail(context.Background(), draft)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingRequired))
	assert.Equal(t, "Failed to send email", lastMessage(t, b).Message)
	assert.Len(t, api.emails, 1)
}

func TestLocatePagesThroughListing(t *testing.T) {
	pages := map[int][]application.Submitted{
		1: {{ID: "a"}, {ID: "b"}},
		2: {{ID: "c"}, {ID: "d"}},
		3: {{ID: "e"}},
	}
	api := &fakeAPI{list: func(_ context.Context, q types.ListQuery) (types.ListResponse, error) {
		return types.ListResponse{Data: pages[q.Page], TotalPages: 3}, nil
	}}
	b := newTestBoard(api)

	app, err := b.Locate(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, "d", app.ID)
	assert.Equal(t, 2, b.Page().Page)
	assert.Len(t, api.queries, 2)

	app, err = b.Locate(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", app.ID)
	assert.Len(t, api.queries, 2, "previously loaded pages are not fetched again")

	_, err = b.Locate(context.Background(), "zzz")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	assert.Len(t, api.queries, 5)
}

func TestLocateAllMakesOnePass(t *testing.T) {
	pages := map[int][]application.Submitted{
		1: {{ID: "a"}, {ID: "b"}},
		2: {{ID: "c"}, {ID: "d"}},
		3: {{ID: "e"}},
	}
	api := &fakeAPI{list: func(_ context.Context, q types.ListQuery) (types.ListResponse, error) {
		return types.ListResponse{Data: pages[q.Page], TotalPages: 3}, nil
	}}
	b := newTestBoard(api)

	missing, err := b.LocateAll(context.Background(), []string{"x", "c", "y", "a", "c", "z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, missing)
	assert.Len(t, api.queries, 3, "unknown ids share a single pass")

	missing, err = b.LocateAll(context.Background(), []string{"a", "e"})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Len(t, api.queries, 3, "loaded applications are not fetched again")

	missing, err = b.LocateAll(context.Background(), []string{"b", "q"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, missing)
	assert.Len(t, api.queries, 6)
}

func TestLocateAllStopsOnceEverythingIsFound(t *testing.T) {
	pages := map[int][]application.Submitted{
		1: {{ID: "a"}},
		2: {{ID: "b"}},
		3: {{ID: "c"}},
	}
	api := &fakeAPI{list: func(_ context.Context, q types.ListQuery) (types.ListResponse, error) {
		return types.ListResponse{Data: pages[q.Page], TotalPages: 3}, nil
	}}
	b := newTestBoard(api)

	missing, err := b.LocateAll(context.Background(), []string{"b"})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Len(t, api.queries, 2)
}
