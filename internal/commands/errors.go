package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	TextCodeValidation      = "AUTOTRANSLATE_COMMAND_INVALID"
	TextCodeCanceled        = "AUTOTRANSLATE_COMMAND_CANCELED"
	TextCodeTimeout         = "AUTOTRANSLATE_COMMAND_TIMEOUT"
	TextCodeContext         = "AUTOTRANSLATE_COMMAND_CONTEXT"
	TextCodeExecutionFailed = "AUTOTRANSLATE_COMMAND_FAILED"
)

// tag wraps untagged errors. Errors already carrying a category keep it.
func tag(err error, category goerrors.Category, message, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return tag(err, goerrors.CategoryValidation, "command message is invalid", TextCodeValidation)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return tag(err, goerrors.CategoryCommand, "command cancelled", TextCodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return tag(err, goerrors.CategoryCommand, "command deadline exceeded", TextCodeTimeout)
	default:
		return tag(err, goerrors.CategoryCommand, "command context error", TextCodeContext)
	}
}

func wrapExecuteError(err error) error {
	return tag(err, goerrors.CategoryCommand, "command execution failed", TextCodeExecutionFailed)
}
