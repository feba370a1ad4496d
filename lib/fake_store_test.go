package lib

import (
	"context"
	"sync"

	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"
	"github.com/weaviate/weaviate/entities/models"
)

// fakeStore is an in-memory Store with checkpointed backup/restore. Fault
// injection hooks let tests produce per-object write failures and
// divergence between object and property counts.
type fakeStore struct {
	mu          sync.Mutex
	classes     map[string]map[strfmt.UUID]*fakeObject
	checkpoints map[string]map[string]map[strfmt.UUID]*fakeObject

	batchCalls int
	// failWrite returning a non-empty message drops the write and reports
	// the message in the batch result, like a per-object server error.
	failWrite func(obj *models.Object) string
}

type fakeObject struct {
	props  map[string]interface{}
	vector []float32
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		classes:     map[string]map[strfmt.UUID]*fakeObject{},
		checkpoints: map[string]map[string]map[strfmt.UUID]*fakeObject{},
	}
}

func (f *fakeStore) DeleteAllClasses(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes = map[string]map[strfmt.UUID]*fakeObject{}
	return nil
}

func (f *fakeStore) CreateClass(ctx context.Context, class *models.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.classes[class.Class]; ok {
		return errors.Errorf("class %s already exists", class.Class)
	}
	f.classes[class.Class] = map[strfmt.UUID]*fakeObject{}
	return nil
}

func (f *fakeStore) BatchWrite(ctx context.Context,
	objects []*models.Object,
) ([]models.ObjectsGetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++

	resp := make([]models.ObjectsGetResponse, len(objects))
	for i, obj := range objects {
		class, ok := f.classes[obj.Class]
		if !ok {
			return nil, errors.Errorf("class %s does not exist", obj.Class)
		}
		if f.failWrite != nil {
			if msg := f.failWrite(obj); msg != "" {
				resp[i] = batchErrorResponse(msg)
				continue
			}
		}
		props := map[string]interface{}{}
		for k, v := range obj.Properties.(map[string]interface{}) {
			props[k] = v
		}
		class[obj.ID] = &fakeObject{props: props, vector: []float32(obj.Vector)}
	}
	return resp, nil
}

func batchErrorResponse(msg string) models.ObjectsGetResponse {
	return models.ObjectsGetResponse{
		Result: &models.ObjectsGetResponseAO2Result{
			Errors: &models.ErrorResponse{
				Error: []*models.ErrorResponseErrorItems0{{Message: msg}},
			},
		},
	}
}

func (f *fakeStore) DeleteWhere(ctx context.Context, className, property string,
	value bool,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	class, ok := f.classes[className]
	if !ok {
		return 0, errors.Errorf("class %s does not exist", className)
	}
	var deleted int64
	for id, obj := range class {
		if b, ok := obj.props[property].(bool); ok && b == value {
			delete(class, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) Aggregate(ctx context.Context, className, property string,
	filter *PropFilter,
) (AggregateCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	class, ok := f.classes[className]
	if !ok {
		return AggregateCounts{}, errors.Errorf("class %s does not exist", className)
	}
	var counts AggregateCounts
	for _, obj := range class {
		if filter != nil {
			if b, ok := obj.props[filter.Property].(bool); !ok || b != filter.Value {
				continue
			}
		}
		counts.Objects++
		if _, ok := obj.props[property]; ok {
			counts.Props++
		}
	}
	return counts, nil
}

func (f *fakeStore) ObjectByID(ctx context.Context, className string,
	id strfmt.UUID,
) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.classes[className][id]
	if !ok {
		return nil, errors.Errorf("%s: object %s not found", className, id)
	}
	return obj.props, nil
}

func (f *fakeStore) IntPropWhere(ctx context.Context, className, property string,
	value int64,
) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []int64
	for _, obj := range f.classes[className] {
		if v, ok := asInt64(obj.props[property]); ok && v == value {
			matches = append(matches, v)
		}
	}
	return matches, nil
}

func (f *fakeStore) NearObject(ctx context.Context, className string, id strfmt.UUID,
	limit int, stage string,
) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	class := f.classes[className]
	if _, ok := class[id]; !ok {
		return 0, errors.Errorf("%s: seed object %s not found", className, id)
	}
	candidates := 0
	for _, obj := range class {
		if stage != "" && obj.props[PropStage] != stage {
			continue
		}
		candidates++
	}
	if candidates < limit {
		// short result sets are truncated, not rejected
		return candidates, nil
	}
	return limit, nil
}

func (f *fakeStore) Backup(ctx context.Context, backupID string, include []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	checkpoint := map[string]map[strfmt.UUID]*fakeObject{}
	for _, className := range include {
		class, ok := f.classes[className]
		if !ok {
			return errors.Errorf("class %s does not exist", className)
		}
		checkpoint[className] = copyClass(class)
	}
	f.checkpoints[backupID] = checkpoint
	return nil
}

func (f *fakeStore) Restore(ctx context.Context, backupID string, include []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	checkpoint, ok := f.checkpoints[backupID]
	if !ok {
		return errors.Errorf("no checkpoint %s", backupID)
	}
	for _, className := range include {
		class, ok := checkpoint[className]
		if !ok {
			return errors.Errorf("checkpoint %s does not contain class %s", backupID, className)
		}
		f.classes[className] = copyClass(class)
	}
	return nil
}

func copyClass(class map[strfmt.UUID]*fakeObject) map[strfmt.UUID]*fakeObject {
	copied := make(map[strfmt.UUID]*fakeObject, len(class))
	for id, obj := range class {
		props := make(map[string]interface{}, len(obj.props))
		for k, v := range obj.props {
			props[k] = v
		}
		copied[id] = &fakeObject{
			props:  props,
			vector: append([]float32(nil), obj.vector...),
		}
	}
	return copied
}

func (f *fakeStore) count(className string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.classes[className])
}

func (f *fakeStore) hasClass(className string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.classes[className]
	return ok
}

func (f *fakeStore) setProp(className string, id strfmt.UUID, prop string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes[className][id].props[prop] = value
}

func (f *fakeStore) dropProp(className string, id strfmt.UUID, prop string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.classes[className][id].props, prop)
}
