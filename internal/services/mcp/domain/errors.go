package domain

import (
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	errori18n "github.com/louisbranch/buildledger/internal/platform/errors/i18n"
	"google.golang.org/grpc/status"
)

// ToolError is a rejected tool call. Its text carries the error code, the gRPC
// status label and the localized user message.
type ToolError struct {
	Code     apperrors.Code
	Status   string
	Message  string
	Metadata map[string]string
	cause    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Status, e.Message)
}

func (e *ToolError) Unwrap() error { return e.cause }

// toolError renders err for an MCP client in locale. Errors without a code
// are passed through unchanged.
func toolError(locale string, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return err
	}
	msg := errori18n.GetCatalog(locale).Format(string(appErr.Code), appErr.Metadata)
	st := status.Convert(appErr.ToGRPCStatus(locale, msg))
	return &ToolError{
		Code:     appErr.Code,
		Status:   st.Code().String(),
		Message:  msg,
		Metadata: appErr.Metadata,
		cause:    err,
	}
}
