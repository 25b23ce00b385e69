package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

// Source is anything that can serve the raw collections of the health API.
type Source interface {
	Locations(ctx context.Context) ([]models.Location, error)
	Migrants(ctx context.Context) ([]models.Migrant, error)
	// MigrantByPhone returns ErrNotFound when no migrant has that phone.
	MigrantByPhone(ctx context.Context, phone string) (*models.Migrant, error)
}

var (
	ErrNotFound = errors.New("not found")
	ErrNetwork  = errors.New("network failure")
)

// NetworkError is a rejected request or a non-2xx response.
type NetworkError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
