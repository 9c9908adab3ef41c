package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

type RunParsingPort interface {
	Execute(ctx context.Context, runID uuid.UUID) error
}
