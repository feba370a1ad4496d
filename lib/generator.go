package lib

import (
	"encoding/binary"
	"math/rand"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	PropShouldBeDeleted   = "should_be_deleted"
	PropIsDivisibleByFour = "is_divisible_by_four"
	PropIndexID           = "index_id"
	PropStage             = "stage"

	// VectorDim is the dimensionality of every synthetic vector.
	VectorDim = 32
)

// Record is one unit of synthetic data. Everything about it except the
// vector is derived from the generating index, so any retrieval path can
// be cross-checked against any other.
type Record struct {
	ID                strfmt.UUID
	IndexID           int64
	Stage             string
	ShouldBeDeleted   bool
	IsDivisibleByFour bool
	Vector            []float32
}

// Generator produces deterministic records. Only the vector is random, and
// the source is seeded so runs are reproducible.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate builds the record for index. deleteBelow is the exclusive upper
// bound of the range's marked-for-deletion prefix, see MarkedCount.
func (g *Generator) Generate(index int64, stage string, deleteBelow int64) Record {
	vector := make([]float32, VectorDim)
	for i := range vector {
		vector[i] = g.rnd.Float32()
	}

	return Record{
		ID:                UUIDFromIndex(index),
		IndexID:           index,
		Stage:             stage,
		ShouldBeDeleted:   index < deleteBelow,
		IsDivisibleByFour: index%4 == 0,
		Vector:            vector,
	}
}

// Object converts the record into the store's object representation, using
// the record's id as the primary key and its vector as the search vector.
func (r Record) Object(className string) *models.Object {
	return &models.Object{
		ID:    r.ID,
		Class: className,
		Properties: map[string]interface{}{
			PropShouldBeDeleted:   r.ShouldBeDeleted,
			PropIndexID:           r.IndexID,
			PropStage:             r.Stage,
			PropIsDivisibleByFour: r.IsDivisibleByFour,
		},
		Vector: models.C11yVector(r.Vector),
	}
}

// MarkedCount returns how many leading indices of [start, end) are marked
// for deletion: one tenth of the range, truncated.
func MarkedCount(start, end int64) int64 {
	if end <= start {
		return 0
	}
	return (end - start) / 10
}

// UUIDFromIndex encodes the index big-endian into the low eight bytes of
// an otherwise zero UUID, so that id and index_id prop are two independent
// retrieval paths to the same record.
func UUIDFromIndex(index int64) strfmt.UUID {
	var b [16]byte
	binary.BigEndian.PutUint64(b[8:], uint64(index))
	id, _ := uuid.FromBytes(b[:])
	return strfmt.UUID(id.String())
}

// IndexFromUUID inverts UUIDFromIndex.
func IndexFromUUID(id strfmt.UUID) (int64, error) {
	parsed, err := uuid.Parse(id.String())
	if err != nil {
		return 0, errors.Wrapf(err, "parse uuid %q", id)
	}
	for _, b := range parsed[:8] {
		if b != 0 {
			return 0, errors.Errorf("uuid %q was not derived from an index", id)
		}
	}
	return int64(binary.BigEndian.Uint64(parsed[8:])), nil
}
