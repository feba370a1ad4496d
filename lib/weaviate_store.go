package lib

import (
	"context"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const backupStatusSuccess = "SUCCESS"

// WeaviateStore adapts a weaviate client to the Store interface.
type WeaviateStore struct {
	client  *weaviate.Client
	backend string
}

var _ Store = (*WeaviateStore)(nil)

func NewWeaviateStore(client *weaviate.Client, backend string) *WeaviateStore {
	return &WeaviateStore{client: client, backend: backend}
}

func (s *WeaviateStore) DeleteAllClasses(ctx context.Context) error {
	return s.client.Schema().AllDeleter().Do(ctx)
}

func (s *WeaviateStore) CreateClass(ctx context.Context, class *models.Class) error {
	return s.client.Schema().ClassCreator().WithClass(class).Do(ctx)
}

func (s *WeaviateStore) BatchWrite(ctx context.Context,
	objects []*models.Object,
) ([]models.ObjectsGetResponse, error) {
	return s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
}

func (s *WeaviateStore) DeleteWhere(ctx context.Context, className, property string,
	value bool,
) (int64, error) {
	where := filters.Where().
		WithPath([]string{property}).
		WithOperator(filters.Equal).
		WithValueBoolean(value)

	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(className).
		WithWhere(where).
		WithOutput("minimal").
		WithDryRun(false).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if resp == nil || resp.Results == nil {
		return 0, nil
	}
	return resp.Results.Successful, nil
}

func (s *WeaviateStore) Aggregate(ctx context.Context, className, property string,
	filter *PropFilter,
) (AggregateCounts, error) {
	query := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(
			graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}},
			graphql.Field{Name: property, Fields: []graphql.Field{{Name: "count"}}},
		)
	if filter != nil {
		query = query.WithWhere(filters.Where().
			WithPath([]string{filter.Property}).
			WithOperator(filters.Equal).
			WithValueBoolean(filter.Value))
	}

	resp, err := query.Do(ctx)
	if err != nil {
		return AggregateCounts{}, err
	}
	if err := graphqlErrors(resp); err != nil {
		return AggregateCounts{}, err
	}

	rows, err := sectionRows(resp, "Aggregate", className)
	if err != nil {
		return AggregateCounts{}, err
	}
	if len(rows) == 0 {
		return AggregateCounts{}, errors.Errorf("%s: aggregation returned no rows", className)
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return AggregateCounts{}, errors.Errorf("%s: malformed aggregation row", className)
	}

	objects, err := nestedCount(row, "meta")
	if err != nil {
		return AggregateCounts{}, errors.Wrapf(err, "%s: aggregation", className)
	}
	props, err := nestedCount(row, property)
	if err != nil {
		return AggregateCounts{}, errors.Wrapf(err, "%s: aggregation", className)
	}

	return AggregateCounts{Objects: objects, Props: props}, nil
}

func (s *WeaviateStore) ObjectByID(ctx context.Context, className string,
	id strfmt.UUID,
) (map[string]interface{}, error) {
	objs, err := s.client.Data().ObjectsGetter().
		WithClassName(className).
		WithID(id.String()).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, errors.Errorf("%s: object %s not found", className, id)
	}
	props, ok := objs[0].Properties.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("%s: object %s has no properties", className, id)
	}
	return props, nil
}

func (s *WeaviateStore) IntPropWhere(ctx context.Context, className, property string,
	value int64,
) ([]int64, error) {
	where := filters.Where().
		WithPath([]string{property}).
		WithOperator(filters.Equal).
		WithValueInt(value)

	resp, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithFields(graphql.Field{Name: property}).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if err := graphqlErrors(resp); err != nil {
		return nil, err
	}

	rows, err := sectionRows(resp, "Get", className)
	if err != nil {
		return nil, err
	}

	values := make([]int64, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s: malformed result row", className)
		}
		v, ok := asInt64(row[property])
		if !ok {
			return nil, errors.Errorf("%s: result row has no readable %s", className, property)
		}
		values = append(values, v)
	}
	return values, nil
}

func (s *WeaviateStore) NearObject(ctx context.Context, className string, id strfmt.UUID,
	limit int, stage string,
) (int, error) {
	nearObject := s.client.GraphQL().NearObjectArgBuilder().WithID(id.String())

	query := s.client.GraphQL().Get().
		WithClassName(className).
		WithFields(graphql.Field{Name: PropIndexID}).
		WithNearObject(nearObject).
		WithLimit(limit)
	if stage != "" {
		query = query.WithWhere(filters.Where().
			WithPath([]string{PropStage}).
			WithOperator(filters.Equal).
			WithValueString(stage))
	}

	resp, err := query.Do(ctx)
	if err != nil {
		return 0, err
	}
	if err := graphqlErrors(resp); err != nil {
		return 0, err
	}

	rows, err := sectionRows(resp, "Get", className)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *WeaviateStore) Backup(ctx context.Context, backupID string, include []string) error {
	resp, err := s.client.Backup().Creator().
		WithBackend(s.backend).
		WithBackupID(backupID).
		WithIncludeClassNames(include...).
		WithWaitForCompletion(true).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "create backup %s", backupID)
	}
	if resp == nil || resp.Status == nil || *resp.Status != backupStatusSuccess {
		return errors.Errorf("backup %s finished with status %s", backupID, derefStatus(resp))
	}
	return nil
}

func (s *WeaviateStore) Restore(ctx context.Context, backupID string, include []string) error {
	resp, err := s.client.Backup().Restorer().
		WithBackend(s.backend).
		WithBackupID(backupID).
		WithIncludeClassNames(include...).
		WithWaitForCompletion(true).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "restore backup %s", backupID)
	}
	if resp == nil || resp.Status == nil || *resp.Status != backupStatusSuccess {
		return errors.Errorf("restore of %s finished with status %s", backupID, restoreStatus(resp))
	}
	return nil
}

func derefStatus(resp *models.BackupCreateResponse) string {
	if resp == nil || resp.Status == nil {
		return "(none)"
	}
	return *resp.Status
}

func restoreStatus(resp *models.BackupRestoreResponse) string {
	if resp == nil || resp.Status == nil {
		return "(none)"
	}
	return *resp.Status
}

func graphqlErrors(resp *models.GraphQLResponse) error {
	if resp == nil {
		return errors.New("empty graphql response")
	}
	if len(resp.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(resp.Errors))
	for i, e := range resp.Errors {
		msgs[i] = e.Message
	}
	return errors.Errorf("graphql: %s", strings.Join(msgs, ", "))
}

// sectionRows unpacks the rows of one class from a Get or Aggregate
// response. A class with no matches yields an empty slice, not an error.
func sectionRows(resp *models.GraphQLResponse, section, className string) ([]interface{}, error) {
	sectionMap, ok := resp.Data[section].(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("malformed %s response", section)
	}
	if sectionMap[className] == nil {
		return nil, nil
	}
	rows, ok := sectionMap[className].([]interface{})
	if !ok {
		return nil, errors.Errorf("%s: malformed %s rows", className, section)
	}
	return rows, nil
}

func nestedCount(row map[string]interface{}, field string) (int64, error) {
	nested, ok := row[field].(map[string]interface{})
	if !ok {
		return 0, errors.Errorf("missing %s", field)
	}
	count, ok := nested["count"].(float64)
	if !ok {
		return 0, errors.Errorf("missing %s count", field)
	}
	return int64(count), nil
}
