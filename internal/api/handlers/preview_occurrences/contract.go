package preview_occurrences

import (
	"context"

	previewOccurrences "github.com/m04kA/SMC-RecurringService/internal/usecase/preview_occurrences"
)

type PreviewUseCase interface {
	Execute(ctx context.Context, req *previewOccurrences.Request) (*previewOccurrences.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
