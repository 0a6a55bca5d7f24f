package store

import (
	"context"

	"letraz-autoapply/pkg/models"
)

// NopStore remembers nothing; every posting is new
type NopStore struct{}

func (NopStore) HasApplied(context.Context, string) (bool, error) { return false, nil }

func (NopStore) Record(context.Context, models.ApplicationRecord) error { return nil }

func (NopStore) Recent(context.Context, int) ([]models.ApplicationRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }
