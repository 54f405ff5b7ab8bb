package common

import (
	"context"

	"hrintake/internal/errors"
)

// OperationFunc produces the result a command prints
type OperationFunc[Output any] func(context.Context) (Output, error)

// RunCommand runs op and writes its result through the output handler.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	op OperationFunc[Output],
) error {
	outputHandler := NewOutputHandler(logger)

	if err := outputHandler.fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	result, err := op(ctx)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

// DraftOperationFunc works on a validated draft file path
type DraftOperationFunc[Output any] func(ctx context.Context, path string) (Output, error)

// RunDraftCommand validates the draft file argument before running op.
func RunDraftCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	path string,
	op DraftOperationFunc[Output],
) error {
	if _, err := NewFileProcessor(logger).ValidateDraftFile(path); err != nil {
		return err
	}
	return RunCommand(ctx, logger, cmdConfig, func(ctx context.Context) (Output, error) {
		return op(ctx, path)
	})
}
