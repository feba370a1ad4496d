package lib

import (
	"context"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate/entities/models"
)

// AggregateCounts carries the two counts every aggregation check compares:
// the store-level object count and the inverted-index property count.
// Divergence between the two is a corruption symptom a plain object count
// would miss.
type AggregateCounts struct {
	Objects int64
	Props   int64
}

// PropFilter is a boolean equality predicate on a named property.
type PropFilter struct {
	Property string
	Value    bool
}

// Store is the subset of data-store operations the verifier drives. The
// production implementation is WeaviateStore; tests substitute an
// in-memory fake, including for the backup/restore contract.
type Store interface {
	// DeleteAllClasses destroys every collection and all of its data.
	DeleteAllClasses(ctx context.Context) error

	// CreateClass provisions one collection from its full configuration.
	CreateClass(ctx context.Context, class *models.Class) error

	// BatchWrite stores the objects under their explicit ids and returns
	// the per-object results for error inspection.
	BatchWrite(ctx context.Context, objects []*models.Object) ([]models.ObjectsGetResponse, error)

	// DeleteWhere removes all objects matching a boolean equality
	// predicate, in commit mode. The returned count is the store's own
	// report of successful deletions and is informational only.
	DeleteWhere(ctx context.Context, className, property string, value bool) (int64, error)

	// Aggregate returns the object count and the count of objects carrying
	// the named property, optionally restricted by a filter.
	Aggregate(ctx context.Context, className, property string, filter *PropFilter) (AggregateCounts, error)

	// ObjectByID fetches one object's properties by primary key.
	ObjectByID(ctx context.Context, className string, id strfmt.UUID) (map[string]interface{}, error)

	// IntPropWhere returns the values of an int property for every object
	// matching an equality predicate on that property.
	IntPropWhere(ctx context.Context, className, property string, value int64) ([]int64, error)

	// NearObject runs a nearest-neighbor search seeded by an existing
	// object's id, optionally restricted to one stage, and returns the
	// result count.
	NearObject(ctx context.Context, className string, id strfmt.UUID, limit int, stage string) (int, error)

	// Backup snapshots the named classes into a checkpoint and waits for
	// completion.
	Backup(ctx context.Context, backupID string, include []string) error

	// Restore brings a checkpoint's classes back and waits for completion.
	Restore(ctx context.Context, backupID string, include []string) error
}
