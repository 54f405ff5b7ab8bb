package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"hrintake/internal/application"
	"hrintake/internal/auth"
	"hrintake/internal/common"
	"hrintake/internal/dashboard"
	"hrintake/internal/errors"
	"hrintake/internal/notify"
	"hrintake/internal/types"
)

const tokenEnv = "HRINTAKE_ADMIN_TOKEN"

var (
	dashboardToken string

	countsOutput outputFlags
	listOutput   outputFlags
	viewOutput   outputFlags
	pdfOutput    outputFlags
	emailOutput  outputFlags
	bulkOutput   outputFlags

	listPage     int
	listLimit    int
	listFilters  dashboard.Filters
	listLocal    dashboard.LocalFilters
	listExamType string
	listMedium   string

	pdfDir string

	emailTo      string
	emailSubject string
	emailMessage string
	emailStatus  string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Review submitted applications",
	Long: `Browse submitted applications, download their PDFs and send status emails.

Every subcommand needs a token from "hrintake login", passed with --token or
` + tokenEnv + `.`,
	PersistentPreRunE: requireToken,
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show the number of applications per role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, &countsOutput, func(ctx context.Context, b *dashboard.Board) (types.Counts, error) {
			return b.LoadCounts(ctx)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, &listOutput, func(ctx context.Context, b *dashboard.Board) (types.ListPage, error) {
			return b.Refresh(ctx)
		})
	},
}

var viewCmd = &cobra.Command{
	Use:   "view [application-id]",
	Short: "Show every field of one application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, &viewOutput, func(ctx context.Context, b *dashboard.Board) (application.Submitted, error) {
			return b.Locate(ctx, args[0])
		})
	},
}

var pdfCmd = &cobra.Command{
	Use:   "pdf [application-id]",
	Short: "Download the generated PDF of an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, &pdfOutput, func(ctx context.Context, b *dashboard.Board) (types.DownloadResult, error) {
			path, err := b.DownloadPDF(ctx, args[0], pdfDir)
			if err != nil {
				return types.DownloadResult{}, err
			}
			return types.DownloadResult{ApplicationID: args[0], Path: path}, nil
		})
	},
}

var emailCmd = &cobra.Command{
	Use:   "email [application-id]",
	Short: "Send a status email to an applicant",
	Long: `Send a status email to one applicant. The recipient, subject and status
default to the applicant's email address, the configured subject template and
the configured default status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, &emailOutput, func(ctx context.Context, b *dashboard.Board) (types.EmailResponse, error) {
			app, err := b.Locate(ctx, args[0])
			if err != nil {
				return types.EmailResponse{}, err
			}
			email := b.DraftEmail(app)
			if emailTo != "" {
				email.To = emailTo
			}
			if emailSubject != "" {
				email.Subject = emailSubject
			}
			if emailStatus != "" {
				email.Status = application.EmailStatus(emailStatus)
			}
			email.Message = emailMessage
			return b.SendEmail(ctx, email)
		})
	},
}

var bulkEmailCmd = &cobra.Command{
	Use:   "bulk-email [application-id...]",
	Short: "Send the same status email to several applicants",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, &bulkOutput, func(ctx context.Context, b *dashboard.Board) (types.BulkEmailResult, error) {
			if _, err := b.LocateAll(ctx, args); err != nil {
				return types.BulkEmailResult{}, err
			}
			return b.BulkEmail(ctx, args, types.EmailRequest{
				Subject: emailSubject,
				Message: emailMessage,
				Status:  application.EmailStatus(emailStatus),
			})
		})
	},
}

func init() {
	dashboardCmd.PersistentFlags().StringVar(&dashboardToken, "token", "", "Dashboard token (default $"+tokenEnv+")")

	countsOutput.register(countsCmd)

	listOutput.register(listCmd)
	f := listCmd.Flags()
	f.IntVar(&listPage, "page", 1, "Page number")
	f.IntVar(&listLimit, "limit", 0, "Applications per page (default from config)")
	f.StringVar(&listFilters.ApplyingFor, "applying-for", "", "Role: Teaching, Non Teaching or Admin")
	f.StringVar(&listFilters.Gender, "gender", "", "Gender")
	f.StringVar(&listFilters.MaritalStatus, "marital-status", "", "Marital status")
	f.StringVar(&listFilters.AreaOfInterest, "area-of-interest", "", "Area of interest")
	f.StringVar(&listFilters.MinExperience, "min-experience", "", "Minimum years of experience")
	f.StringVar(&listFilters.MaxExperience, "max-experience", "", "Maximum years of experience")
	f.StringVar(&listFilters.ApplicationType, "application-type", "", "school, college or administration")
	f.StringVar(&listFilters.SubjectOrDepartment, "subject", "", "Subject or department")
	f.StringVarP(&listFilters.Q, "query", "q", "", "Free text search")
	f.StringVar(&listLocal.NameOrEmail, "name-or-email", "", "Narrow the page by name or email")
	f.StringVar(&listLocal.Subject, "education-subject", "", "Narrow the page by education subject")
	f.StringVar(&listExamType, "exam-type", "", "Narrow the page by exam type")
	f.StringVar(&listMedium, "medium", "", "Narrow the page by medium")
	f.StringVar(&listLocal.StartDate, "start-date", "", "Earliest submission date (YYYY-MM-DD)")
	f.StringVar(&listLocal.EndDate, "end-date", "", "Latest submission date (YYYY-MM-DD)")

	viewOutput.register(viewCmd)

	pdfOutput.register(pdfCmd)
	pdfCmd.Flags().StringVar(&pdfDir, "dir", "", "Directory to save into (default from config)")

	emailOutput.register(emailCmd)
	emailCmd.Flags().StringVar(&emailTo, "to", "", "Recipient (default the applicant's email)")
	bulkOutput.register(bulkEmailCmd)
	for _, c := range []*cobra.Command{emailCmd, bulkEmailCmd} {
		c.Flags().StringVar(&emailSubject, "subject", "", "Subject (default from the configured template)")
		c.Flags().StringVarP(&emailMessage, "message", "m", "", "Message body")
		c.Flags().StringVar(&emailStatus, "status", "", "Status: Selected, Rejected or Interview (default from config)")
		_ = c.MarkFlagRequired("message")
	}

	dashboardCmd.AddCommand(countsCmd, listCmd, viewCmd, pdfCmd, emailCmd, bulkEmailCmd)
}

// requireToken rejects dashboard commands without a valid admin token
func requireToken(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	token := dashboardToken
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		return errors.NewAuthError(errors.ErrCodeInvalidToken,
			"dashboard token required, run \"hrintake login\" first", nil)
	}

	gate, err := auth.NewGate(cfg.Admin, logger)
	if err != nil {
		return err
	}
	claims, err := gate.Verify(token)
	if err != nil {
		return err
	}
	logger.Debug("Dashboard token accepted", "username", claims.Username)
	return nil
}

// newBoard builds a dashboard with the list flags applied
func newBoard(cmd *cobra.Command) (*dashboard.Board, func(), error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	client, err := newAPIClient(cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}

	toasts := notify.NewQueue(cfg.Wizard.NotificationTTL, toastSink(os.Stderr))
	board := dashboard.NewBoard(client, dashboard.OptionsFromConfig(cfg.Dashboard, nil), toasts, logger)

	board.SetFilters(listFilters)
	local := listLocal
	local.ExamType = application.ExamType(listExamType)
	local.Medium = application.Medium(listMedium)
	board.SetLocalFilters(local)
	if listLimit > 0 {
		if err := board.SetLimit(listLimit); err != nil {
			toasts.Close()
			return nil, nil, err
		}
	}
	board.SetPage(listPage)
	return board, toasts.Close, nil
}

func runBoard[T any](cmd *cobra.Command, out *outputFlags, op func(context.Context, *dashboard.Board) (T, error)) error {
	cmdConfig, err := out.resolve(cmd)
	if err != nil {
		return err
	}
	board, closeToasts, err := newBoard(cmd)
	if err != nil {
		return err
	}
	defer closeToasts()

	return common.RunCommand(cmd.Context(), getLoggerFromContext(cmd.Context()), cmdConfig,
		func(ctx context.Context) (T, error) { return op(ctx, board) })
}
