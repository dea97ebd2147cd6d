package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrSnapshotUnavailable signals the seen-order history could not be read or written.
	ErrSnapshotUnavailable = errors.New("order snapshot unavailable")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingOrderID) ||
		errors.Is(err, domain.ErrInvalidTransition) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func snapshotError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
}
