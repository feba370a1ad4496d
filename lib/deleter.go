package lib

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DeleteMarked issues a single server-evaluated delete removing every
// record marked for deletion, in commit mode. The store's own report is
// logged for the operator; the aggregate checks downstream are the source
// of truth.
func DeleteMarked(ctx context.Context, store Store, log logrus.FieldLogger,
	className string,
) error {
	deleted, err := store.DeleteWhere(ctx, className, PropShouldBeDeleted, true)
	if err != nil {
		return errors.Wrapf(err, "delete marked records in %s", className)
	}
	log.Infof("class: %s - store reports %d deleted records", className, deleted)
	return nil
}
