package testutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/storage"
)

// ErrStorageUnavailable is returned by FailingDriver operations.
var ErrStorageUnavailable = errors.New("mock storage unavailable")

// FailingDriver wraps a storage.Driver and fails selected operations.
type FailingDriver struct {
	storage.Driver

	FailUpsert bool
	FailRecent bool
}

func (f *FailingDriver) Upsert(ctx context.Context, ex *exchange.Exchange) error {
	if f.FailUpsert {
		return ErrStorageUnavailable
	}
	return f.Driver.Upsert(ctx, ex)
}

func (f *FailingDriver) Recent(ctx context.Context, limit int) ([]*exchange.Exchange, error) {
	if f.FailRecent {
		return nil, ErrStorageUnavailable
	}
	return f.Driver.Recent(ctx, limit)
}
