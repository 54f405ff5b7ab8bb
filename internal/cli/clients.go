package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"

	"hrintake/internal/apiclient"
	"hrintake/internal/application"
	"hrintake/internal/config"
	"hrintake/internal/draft"
	"hrintake/internal/errors"
	"hrintake/internal/notify"
	"hrintake/internal/observability"
	"hrintake/internal/server"
	"hrintake/internal/utils"
	"hrintake/internal/wizard"
)

// toastSink prints notifications to w as they are raised
func toastSink(w io.Writer) notify.Sink {
	success := color.New(color.FgGreen, color.Bold).SprintFunc()
	failure := color.New(color.FgRed, color.Bold).SprintFunc()
	info := color.New(color.FgCyan).SprintFunc()

	return func(e notify.Entry) {
		switch e.Kind {
		case notify.KindSuccess:
			fmt.Fprintf(w, "%s %s\n", success("✔"), e.Message)
		case notify.KindError:
			fmt.Fprintf(w, "%s %s\n", failure("✖"), e.Message)
		default:
			fmt.Fprintf(w, "%s %s\n", info("•"), e.Message)
		}
	}
}

// newAPIClient builds the intake API client. om may be nil.
func newAPIClient(cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager) (*apiclient.Client, error) {
	return apiclient.New(cfg.API, logger,
		apiclient.WithHTTPClient(&http.Client{Transport: om.Transport(http.DefaultTransport)}),
		apiclient.WithMetrics(om.GetMetrics()),
	)
}

// draftSession is a wizard session filled from a draft file
type draftSession struct {
	*wizard.Session
	draft     *draft.Draft
	segmented bool
}

// attachmentOverrides replace the photo and resume paths named in a draft
type attachmentOverrides struct {
	photo  string
	resume string
}

// loadDraftSession replays a draft into a fresh session. Notifications go to stderr.
func loadDraftSession(cfg *config.Config, logger *errors.Logger, submitter wizard.Submitter,
	path string, overrides attachmentOverrides) (*draftSession, error) {
	sessionCfg, err := server.SessionConfigFrom(cfg.Wizard)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid wizard steps", err)
	}
	sessionCfg.Sink = toastSink(os.Stderr)

	d, err := draft.Load(path, application.NewRecord())
	if err != nil {
		return nil, err
	}

	sess := wizard.NewSession(sessionCfg, submitter, logger)
	for _, action := range d.Actions {
		if err := sess.Dispatch(action); err != nil {
			sess.Close()
			return nil, err
		}
	}

	attachments := map[string]string{"photo": d.Photo, "resume": d.Resume}
	if overrides.photo != "" {
		attachments["photo"] = overrides.photo
	}
	if overrides.resume != "" {
		attachments["resume"] = overrides.resume
	}
	for _, field := range []string{"photo", "resume"} {
		if attachments[field] == "" {
			continue
		}
		att, err := utils.ReadAttachment(field, attachments[field], cfg.Wizard.MaxAttachmentSize)
		if err == nil {
			err = sess.Attach(field, att)
		}
		if err != nil {
			sess.Close()
			return nil, err
		}
	}

	logger.Debug("Draft loaded", "path", path, "actions", len(d.Actions))

	ds := &draftSession{Session: sess, draft: d}
	for _, key := range sessionCfg.Steps {
		if key == wizard.StepType {
			ds.segmented = true
		}
	}
	return ds, nil
}

// validate runs the pre-submit checks on the session's record
func (ds *draftSession) validate() error {
	return wizard.Validate(ds.Snapshot().Record, ds.segmented)
}
