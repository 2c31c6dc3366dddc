/*
Package storage defines the uniform persistence contract for PTO records.

PURPOSE:
  One interface, two interchangeable backends. The rest of the system is
  written against Adapter only and is agnostic to which backend is active:

    storage/sqlite: managed table backend with self-healing provisioning.
      An operation that fails because the table does not exist provisions
      the table and retries exactly once.
    storage/remote: remote-API backend. Each operation maps 1:1 onto one
      HTTP call against a configured base URL and path template.

  Selection is a static configuration decision made once at process start
  (see storage/factory).

NOT-FOUND CONTRACT:
  Get and Delete return (nil, nil) when no record matches: not-found is a
  first-class result, not an error. Update on a missing record returns
  ErrNotFound since there is nothing to merge onto.

SEE ALSO:
  - storage/sqlite/sqlite.go: table backend
  - storage/remote/remote.go: HTTP backend
  - storage/factory/factory.go: construction-time backend selection
*/
package storage

import (
	"context"
	"errors"

	"github.com/warp/pto-scheduler/pto"
)

// ErrNotFound is returned by Update when the target record does not exist.
var ErrNotFound = errors.New("pto record not found")

// Adapter is the uniform CRUD contract over PTO records.
type Adapter interface {
	// Create persists a new record and returns the stored copy.
	Create(ctx context.Context, rec pto.Request) (*pto.Request, error)

	// Get returns the record with the given id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*pto.Request, error)

	// Update merges the non-nil fields onto the stored record and returns
	// the merged result. Returns ErrNotFound when the record is absent.
	Update(ctx context.Context, id string, fields pto.Fields) (*pto.Request, error)

	// Delete removes the record and returns it, or (nil, nil) when absent.
	Delete(ctx context.Context, id string) (*pto.Request, error)

	// List returns all records in storage scan order.
	List(ctx context.Context) ([]pto.Request, error)
}
