package dashboard

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"hrintake/internal/application"
	"hrintake/internal/config"
	"hrintake/internal/errors"
	"hrintake/internal/notify"
	"hrintake/internal/observability"
	"hrintake/internal/types"
)

// ErrSuperseded is returned by Refresh when a newer refresh replaced it
var ErrSuperseded = stderrors.New("list refresh superseded by a newer request")

// API is the part of the intake API the dashboard reads and writes
type API interface {
	GetCounts(ctx context.Context) (types.Counts, error)
	ListApplications(ctx context.Context, q types.ListQuery) (types.ListResponse, error)
	DownloadPDF(ctx context.Context, id string) ([]byte, error)
	SendEmail(ctx context.Context, email types.EmailRequest) (types.EmailResponse, error)
}

// Options configure a Board
type Options struct {
	PageSizes            []int
	PageSize             int
	DownloadDir          string
	DefaultEmailStatus   application.EmailStatus
	EmailSubjectTemplate string
	Metrics              *observability.Metrics
}

// OptionsFromConfig maps the dashboard configuration section
func OptionsFromConfig(cfg config.DashboardConfig, metrics *observability.Metrics) Options {
	return Options{
		PageSizes:            cfg.PageSizes,
		PageSize:             cfg.PageSize,
		DownloadDir:          cfg.DownloadDir,
		DefaultEmailStatus:   application.EmailStatus(cfg.DefaultEmailStatus),
		EmailSubjectTemplate: cfg.EmailSubjectTemplate,
		Metrics:              metrics,
	}
}

// Board is the state of the review dashboard
type Board struct {
	api     API
	opts    Options
	toasts  *notify.Queue
	logger  *errors.Logger
	metrics *observability.Metrics

	mu         sync.Mutex
	page       int
	limit      int
	totalPages int
	filters    Filters
	local      LocalFilters
	apps       []application.Submitted
	seen       map[string]application.Submitted
	counts     types.Counts
	gen        uint64
	cancel     context.CancelFunc
}

// NewBoard creates a board on page 1
func NewBoard(api API, opts Options, toasts *notify.Queue, logger *errors.Logger) *Board {
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = []int{5, 10, 20}
	}
	if !slices.Contains(opts.PageSizes, opts.PageSize) {
		opts.PageSize = opts.PageSizes[0]
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}
	if !opts.DefaultEmailStatus.Valid() {
		opts.DefaultEmailStatus = application.StatusInterview
	}
	if opts.EmailSubjectTemplate == "" {
		opts.EmailSubjectTemplate = "Application update - %s"
	}
	if toasts == nil {
		toasts = notify.NewQueue(notify.DefaultTTL, nil)
	}

	return &Board{
		api:        api,
		opts:       opts,
		toasts:     toasts,
		logger:     logger,
		metrics:    opts.Metrics,
		page:       1,
		limit:      opts.PageSize,
		totalPages: 1,
		seen:       make(map[string]application.Submitted),
	}
}

// Notifications returns the board's toast queue
func (b *Board) Notifications() *notify.Queue { return b.toasts }

// SetFilters replaces the server-side filters and returns to page 1
func (b *Board) SetFilters(f Filters) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = f
	b.page = 1
}

// SetLocalFilters replaces the client-side filters and returns to page 1
func (b *Board) SetLocalFilters(f LocalFilters) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.local = f
	b.page = 1
}

// SetLimit changes the page size. Only configured sizes are accepted.
func (b *Board) SetLimit(limit int) error {
	if !slices.Contains(b.opts.PageSizes, limit) {
		return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
			fmt.Sprintf("page size must be one of %v", b.opts.PageSizes), nil).
			WithContext(errors.ContextField, "limit")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limit = limit
	b.page = 1
	return nil
}

// SetPage moves to page p. Pages past the end are clamped by the next Refresh.
func (b *Board) SetPage(p int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = max(p, 1)
	return b.page
}

// NextPage advances unless the last page is shown
func (b *Board) NextPage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page < b.totalPages {
		b.page++
	}
	return b.page
}

// PrevPage goes back one page, never below 1
func (b *Board) PrevPage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = max(1, b.page-1)
	return b.page
}

// Refresh loads the current page. Starting a refresh cancels the previous one,
// and a response that arrives after a newer refresh started is discarded.
func (b *Board) Refresh(ctx context.Context) (types.ListPage, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.gen++
	gen := b.gen
	query := b.filters.Query(b.page, b.limit)
	b.mu.Unlock()

	resp, err := b.api.ListApplications(ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	cancel()
	if gen != b.gen {
		return types.ListPage{}, ErrSuperseded
	}
	b.cancel = nil

	if err != nil {
		b.logger.LogError(err, "Failed to load applications", "page", query.Page, "limit", query.Limit)
		b.toasts.Error("Failed to load applications")
		return types.ListPage{}, err
	}

	b.apps = resp.Data
	for _, app := range resp.Data {
		b.seen[app.ID] = app
	}
	b.totalPages = max(1, resp.TotalPages)
	if b.page > b.totalPages {
		b.page = b.totalPages
	}
	return b.pageLocked(), nil
}

// LoadCounts fetches the aggregate counts. On failure the previous counts
// (zeros before the first success) are kept and returned with the error.
func (b *Board) LoadCounts(ctx context.Context) (types.Counts, error) {
	counts, err := b.api.GetCounts(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.logger.LogError(err, "Failed to fetch counts")
		b.toasts.Error("Failed to fetch counts")
		return b.counts, err
	}
	b.counts = counts
	return counts, nil
}

// Counts returns the last loaded counts
func (b *Board) Counts() types.Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Visible returns the loaded applications that pass the local filters
func (b *Board) Visible() []application.Submitted {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visibleLocked()
}

// Page describes the loaded page after local filtering
func (b *Board) Page() types.ListPage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageLocked()
}

func (b *Board) pageLocked() types.ListPage {
	return types.ListPage{
		Page:         b.page,
		Limit:        b.limit,
		TotalPages:   b.totalPages,
		Applications: b.visibleLocked(),
	}
}

func (b *Board) visibleLocked() []application.Submitted {
	out := make([]application.Submitted, 0, len(b.apps))
	for _, app := range b.apps {
		if b.local.Match(app) {
			out = append(out, app)
		}
	}
	return out
}

// Find returns an application by id from the current page or any page loaded before
func (b *Board) Find(id string) (application.Submitted, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, app := range b.apps {
		if app.ID == id {
			return app, true
		}
	}
	app, ok := b.seen[id]
	return app, ok
}

// Locate finds id, paging through the filtered listing when it has not been
// loaded yet. The board is left on the page where id was found.
func (b *Board) Locate(ctx context.Context, id string) (application.Submitted, error) {
	if app, ok := b.Find(id); ok {
		return app, nil
	}

	err := b.pageThrough(ctx, func() bool {
		_, ok := b.Find(id)
		return ok
	})
	if err != nil {
		return application.Submitted{}, err
	}
	if app, ok := b.Find(id); ok {
		return app, nil
	}
	return application.Submitted{}, errors.NewValidationError(errors.ErrCodeNotFound,
		fmt.Sprintf("application %s not found", id), nil).
		WithContext("application_id", id)
}

// LocateAll loads every application in ids with at most one pass over the
// filtered listing and returns the ids that were not found.
func (b *Board) LocateAll(ctx context.Context, ids []string) ([]string, error) {
	missing := b.unknown(uniqueIDs(ids))
	if len(missing) == 0 {
		return nil, nil
	}

	err := b.pageThrough(ctx, func() bool {
		missing = b.unknown(missing)
		return len(missing) == 0
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}

func (b *Board) unknown(ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := b.Find(id); !ok {
			out = append(out, id)
		}
	}
	return out
}

// pageThrough refreshes pages from the first until found reports true or the
// last page has been loaded.
func (b *Board) pageThrough(ctx context.Context, found func() bool) error {
	for page := 1; ; page++ {
		b.SetPage(page)
		listing, err := b.Refresh(ctx)
		if err != nil {
			return err
		}
		if found() || page >= listing.TotalPages {
			return nil
		}
	}
}

// PDFFileName is the name a downloaded application PDF is saved under
func PDFFileName(id string) string {
	return "Application_" + id + ".pdf"
}

// DownloadPDF saves the generated PDF of application id into dir and returns its path.
// An empty dir selects the configured download directory.
func (b *Board) DownloadPDF(ctx context.Context, id, dir string) (string, error) {
	path, err := b.downloadPDF(ctx, id, dir)
	b.metrics.RecordBusinessMetric(ctx, observability.MetricPDFDownloaded, err == nil)
	if err != nil {
		b.logger.LogError(err, "Failed to download PDF", "application_id", id)
		b.toasts.Error("Failed to download PDF")
		return "", err
	}
	b.toasts.Success("PDF downloaded")
	return path, nil
}

func (b *Board) downloadPDF(ctx context.Context, id, dir string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFieldValue, "invalid application id", nil).
			WithContext("application_id", id)
	}
	if dir == "" {
		dir = b.opts.DownloadDir
	}

	data, err := b.api.DownloadPDF(ctx, id)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to create download directory", err).
			WithContext("dir", dir)
	}
	path := filepath.Join(dir, PDFFileName(id))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to write PDF", err).
			WithContext("path", path)
	}
	return path, nil
}

// DraftEmail prefills the composer for app
func (b *Board) DraftEmail(app application.Submitted) types.EmailRequest {
	return types.EmailRequest{
		ApplicationID: app.ID,
		To:            app.Email,
		Subject:       b.subjectFor(app),
		Status:        b.opts.DefaultEmailStatus,
	}
}

func (b *Board) subjectFor(app application.Submitted) string {
	if strings.Contains(b.opts.EmailSubjectTemplate, "%s") {
		return fmt.Sprintf(b.opts.EmailSubjectTemplate, app.FullName)
	}
	return b.opts.EmailSubjectTemplate
}

func validateEmail(email types.EmailRequest) error {
	if strings.TrimSpace(email.To) == "" {
		return errors.NewValidationError(errors.ErrCodeMissingRequired, "recipient address is required", nil).
			WithContext(errors.ContextField, "to")
	}
	if email.Status != "" && !email.Status.Valid() {
		return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
			fmt.Sprintf("status must be one of %v", application.EmailStatuses()), nil).
			WithContext(errors.ContextField, "status")
	}
	return nil
}

// SendEmail sends one status update email
func (b *Board) SendEmail(ctx context.Context, email types.EmailRequest) (types.EmailResponse, error) {
	if email.Status == "" {
		email.Status = b.opts.DefaultEmailStatus
	}
	if err := validateEmail(email); err != nil {
		b.toasts.Error("Failed to send email")
		return types.EmailResponse{}, err
	}

	resp, err := b.api.SendEmail(ctx, email)
	b.metrics.RecordBusinessMetric(ctx, observability.MetricEmailSent, err == nil, attribute.String("mode", "single"))
	if err != nil {
		b.logger.LogError(err, "Failed to send email", "application_id", email.ApplicationID)
		b.toasts.Error("Failed to send email")
		return types.EmailResponse{}, err
	}
	b.toasts.Success("Email sent and logged")
	return resp, nil
}

// BulkEmail sends template to each loaded application in ids, one request at a
// time. Individual failures are counted and do not stop the batch. Recipient and
// application id come from each application; an empty template subject is
// filled per recipient.
func (b *Board) BulkEmail(ctx context.Context, ids []string, template types.EmailRequest) (types.BulkEmailResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return types.BulkEmailResult{}, errors.NewValidationError(errors.ErrCodeMissingRequired,
			"no applications selected", nil)
	}
	if template.Status == "" {
		template.Status = b.opts.DefaultEmailStatus
	}

	result := types.BulkEmailResult{Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, id)
			continue
		}

		app, ok := b.Find(id)
		if !ok {
			b.logger.Warn("Bulk email skipped unknown application", "application_id", id)
			result.Failed = append(result.Failed, id)
			continue
		}

		email := template
		email.ApplicationID = app.ID
		email.To = app.Email
		if email.Subject == "" {
			email.Subject = b.subjectFor(app)
		}

		err := validateEmail(email)
		if err == nil {
			_, err = b.api.SendEmail(ctx, email)
		}
		b.metrics.RecordBusinessMetric(ctx, observability.MetricEmailSent, err == nil, attribute.String("mode", "bulk"))
		if err != nil {
			b.logger.LogError(err, "Bulk email failed for application", "application_id", id)
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Sent++
	}

	b.toasts.Success(fmt.Sprintf("Emails sent: %d/%d", result.Sent, result.Total))
	return result, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
