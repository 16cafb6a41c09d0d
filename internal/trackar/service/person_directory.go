package service

import (
	"context"
	"strings"
	"time"

	"github.com/trackar/server/internal/trackar/store"
)

type PersonDirectory struct {
	store store.PersonStore
}

func NewPersonDirectory(st store.PersonStore) *PersonDirectory {
	return &PersonDirectory{store: st}
}

func (d *PersonDirectory) NoteSeen(ctx context.Context, personID, displayName string, at time.Time) error {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return d.store.MarkSeen(ctx, personID, strings.TrimSpace(displayName), at)
}

func (d *PersonDirectory) Count(ctx context.Context) (int, error) {
	return d.store.Count(ctx)
}

func (d *PersonDirectory) List(ctx context.Context) ([]store.PersonRecord, error) {
	return d.store.List(ctx)
}
