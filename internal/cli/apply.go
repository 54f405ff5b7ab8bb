package cli

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hrintake/internal/common"
	"hrintake/internal/draft"
	"hrintake/internal/errors"
	"hrintake/internal/types"
	"hrintake/internal/wizard"
)

var (
	applyOutput       outputFlags
	applyAttachments  attachmentOverrides
	applyDryRun       bool
	reviewOutput      outputFlags
	reviewAttachments attachmentOverrides
	watchOutput       outputFlags
)

var applyCmd = &cobra.Command{
	Use:   "apply [draft-file]",
	Short: "Submit an application from a draft file",
	Long: `Load a JSON or YAML draft, apply it to a new application the same way the
interactive form would, validate it and submit it to the intake API.

The photo and resume named in the draft are resolved relative to the draft file
and can be replaced with --photo and --resume. With --dry-run the application
is validated and encoded but not sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var reviewCmd = &cobra.Command{
	Use:   "review [draft-file]",
	Short: "Show the review page of a draft and whether it is ready to submit",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

var watchCmd = &cobra.Command{
	Use:   "watch [draft-file]",
	Short: "Re-render the review page whenever a draft file changes",
	Long: `Watch a draft file and print its review page every time it is saved.
Invalid drafts are reported and watching continues. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	applyOutput.register(applyCmd)
	applyCmd.Flags().StringVar(&applyAttachments.photo, "photo", "", "Photo file (jpg, jpeg or png), overrides the draft")
	applyCmd.Flags().StringVar(&applyAttachments.resume, "resume", "", "Resume file (pdf, doc, docx, jpg, jpeg or png), overrides the draft")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Validate and encode without submitting")

	reviewOutput.register(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewAttachments.photo, "photo", "", "Photo file, overrides the draft")
	reviewCmd.Flags().StringVar(&reviewAttachments.resume, "resume", "", "Resume file, overrides the draft")

	watchOutput.register(watchCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	cmdConfig, err := applyOutput.resolve(cmd)
	if err != nil {
		return err
	}

	client, err := newAPIClient(cfg, logger, nil)
	if err != nil {
		return err
	}

	return common.RunDraftCommand(cmd.Context(), logger, cmdConfig, args[0],
		func(ctx context.Context, path string) (types.SubmitResult, error) {
			ds, err := loadDraftSession(cfg, logger, client, path, applyAttachments)
			if err != nil {
				return types.SubmitResult{}, err
			}
			defer ds.Close()

			if applyDryRun {
				return dryRun(ds)
			}

			logger.Info("Submitting application", "draft", path)
			if err := ds.Submit(ctx); err != nil {
				return types.SubmitResult{}, err
			}
			return types.SubmitResult{Submitted: true, Message: wizard.SubmittedMessage}, nil
		})
}

func dryRun(ds *draftSession) (types.SubmitResult, error) {
	if err := ds.validate(); err != nil {
		return types.SubmitResult{}, err
	}
	payload, err := wizard.Encode(ds.Snapshot().Record)
	if err != nil {
		return types.SubmitResult{}, errors.NewInternalError(errors.ErrCodeSubmissionFailed, "failed to encode application", err)
	}
	parts, err := partNames(payload)
	if err != nil {
		return types.SubmitResult{}, errors.NewInternalError(errors.ErrCodeSubmissionFailed, "failed to read encoded application", err)
	}
	return types.SubmitResult{
		DryRun:  true,
		Message: "Application is valid and was not sent",
		Parts:   parts,
	}, nil
}

// partNames lists the form field names of an encoded payload in order
func partNames(p *wizard.Payload) ([]string, error) {
	_, params, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return nil, err
	}
	r := multipart.NewReader(bytes.NewReader(p.Body), params["boundary"])

	var names []string
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		names = append(names, part.FormName())
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	cmdConfig, err := reviewOutput.resolve(cmd)
	if err != nil {
		return err
	}

	return common.RunDraftCommand(cmd.Context(), logger, cmdConfig, args[0],
		func(_ context.Context, path string) (types.ReviewResult, error) {
			return reviewDraft(cmd, path, reviewAttachments)
		})
}

func reviewDraft(cmd *cobra.Command, path string, overrides attachmentOverrides) (types.ReviewResult, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// a review never submits
	ds, err := loadDraftSession(cfg, logger, nil, path, overrides)
	if err != nil {
		return types.ReviewResult{}, err
	}
	defer ds.Close()
	return types.NewReviewResult(ds.Summary(), ds.validate()), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	cmdConfig, err := watchOutput.resolve(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	if _, err := common.NewFileProcessor(logger).ValidateDraftFile(path); err != nil {
		return err
	}

	render := func() {
		err := common.RunCommand(cmd.Context(), logger, cmdConfig, func(context.Context) (types.ReviewResult, error) {
			return reviewDraft(cmd, path, attachmentOverrides{})
		})
		if err != nil {
			logger.LogError(err, "Draft could not be reviewed", "path", path)
		}
	}
	render()

	watcher := draft.NewWatcher(path, 0, render, logger)
	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("Watching draft for changes", "path", path)
	<-ctx.Done()
	return nil
}
