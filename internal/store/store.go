// Package store is the document store the geo service reads entities from
// and writes cached coordinates back to.
//
// Three backends share the same document field names:
//
//	file      a JSON file loaded into memory, rewritten on every update
//	postgres  jobs/users tables holding one JSONB document per row
//	mongo     jobs/users collections
package store

import (
	"context"
	"errors"
	"fmt"

	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is the read/modify/write surface the service needs.
type Store interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	// UpdateJobLocation and UpdateUserLocation upsert latitude/longitude on
	// the document and return it as stored afterwards.
	UpdateJobLocation(ctx context.Context, id string, c geo.Coordinate) (*model.Job, error)
	UpdateUserLocation(ctx context.Context, id string, c geo.Coordinate) (*model.User, error)
	Close(ctx context.Context) error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Options carries the connection settings for every backend.
type Options struct {
	Backend       string
	DataFile      string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return OpenFile(opts.DataFile)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	case BackendMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
