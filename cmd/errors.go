package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/farigab/bragctl/internal/adapter/callback"
	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/output"
)

// mapError turns any command error into a CLIError with an exit code.
func mapError(err error) *output.CLIError {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var failure *domain.ClassifiedFailure
	if errors.As(err, &failure) {
		return mapFailure(failure)
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrSessionExpired):
		return &output.CLIError{
			Summary:    "not signed in",
			Detail:     err.Error(),
			Suggestion: "Run 'bragctl login' first",
			ExitCode:   output.ExitAuthRequired,
			Err:        err,
		}
	case errors.Is(err, domain.ErrRefreshInProgress), errors.Is(err, domain.ErrRefreshFailed):
		return &output.CLIError{
			Summary:    "session refresh failed",
			Detail:     err.Error(),
			Suggestion: "Run 'bragctl login' to start a new session",
			ExitCode:   output.ExitAuthRequired,
			Err:        err,
		}
	case errors.Is(err, callback.ErrDenied):
		return &output.CLIError{Summary: "login was not completed", Detail: err.Error(), ExitCode: output.ExitAuthRequired, Err: err}
	case errors.Is(err, callback.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &output.CLIError{
			Summary:    "operation timed out",
			Detail:     err.Error(),
			Suggestion: "Retry, or raise api.timeout / login.timeout in .bragctl.yaml",
			ExitCode:   output.ExitTimeout,
			Err:        err,
		}
	case errors.Is(err, context.Canceled):
		return &output.CLIError{Summary: "interrupted", ExitCode: output.ExitGeneral, Err: err}
	case errors.Is(err, domain.ErrUnknownPreset):
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: "Run 'bragctl presets' to list the available periods",
			ExitCode:   output.ExitUsageError,
			Err:        err,
		}
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNoDateRange),
		errors.Is(err, domain.ErrPromptTooLong), errors.Is(err, domain.ErrTokenRequired),
		errors.Is(err, domain.ErrInvalidStep):
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError, Err: err}
	}

	return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitGeneral, Err: err}
}

func mapFailure(f *domain.ClassifiedFailure) *output.CLIError {
	e := &output.CLIError{
		Summary:  f.Message,
		Detail:   f.Method + " " + f.URL,
		ExitCode: output.ExitAPIError,
		Err:      f,
	}
	switch {
	case f.Status == 0:
		e.ExitCode = output.ExitNetworkError
		e.Suggestion = "Check api.base_url and that the API is reachable"
	case f.Status == http.StatusUnauthorized:
		e.ExitCode = output.ExitAuthRequired
		e.Suggestion = "Run 'bragctl login' to sign in again"
	case f.Status == http.StatusGatewayTimeout || f.Status == http.StatusRequestTimeout:
		e.ExitCode = output.ExitTimeout
	}
	return e
}

// alreadyReported is true when the failure pipeline showed a notice for err
// during this run.
func alreadyReported(err error) bool {
	if current == nil || !current.notices.shown.Load() {
		return false
	}
	var failure *domain.ClassifiedFailure
	return errors.As(err, &failure)
}
