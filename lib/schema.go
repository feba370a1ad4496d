package lib

import (
	"context"

	"github.com/pkg/errors"
	"github.com/weaviate/weaviate/entities/models"
	"github.com/weaviate/weaviate/entities/schema"
)

// ClassDefinition returns the fixed collection configuration the suite
// expects: vectors supplied externally, small HNSW build parameters, no
// timestamp indexing, and the four synthetic properties.
func ClassDefinition(name string) *models.Class {
	return &models.Class{
		Class:      name,
		Vectorizer: "none",
		VectorIndexConfig: map[string]interface{}{
			"efConstruction":         64,
			"maxConnections":         4,
			"cleanupIntervalSeconds": 10,
		},
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexTimestamps: false,
		},
		Properties: []*models.Property{
			{Name: PropShouldBeDeleted, DataType: []string{string(schema.DataTypeBoolean)}},
			{Name: PropIsDivisibleByFour, DataType: []string{string(schema.DataTypeBoolean)}},
			{Name: PropIndexID, DataType: []string{string(schema.DataTypeInt)}},
			{Name: PropStage, DataType: []string{string(schema.DataTypeString)}},
		},
	}
}

// ResetSchema drops everything in the store, then recreates one collection
// per name. Any failure is returned immediately; partial schemas are never
// repaired.
func ResetSchema(ctx context.Context, store Store, classNames []string) error {
	if err := store.DeleteAllClasses(ctx); err != nil {
		return errors.Wrap(err, "delete all classes")
	}
	for _, name := range classNames {
		if err := store.CreateClass(ctx, ClassDefinition(name)); err != nil {
			return errors.Wrapf(err, "create class %s", name)
		}
	}
	return nil
}
