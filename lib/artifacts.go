package lib

import (
	"context"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// BackupArtifactSize sums the stored size of every chunk a backup left in
// an S3-compatible bucket. Only meaningful for S3 backends.
func BackupArtifactSize(ctx context.Context, cfg MinioConfig, backupID string) (int64, error) {
	client, err := minio.New(cfg.URL, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return 0, errors.Wrap(err, "connect to backup bucket")
	}

	var total int64
	for object := range client.ListObjects(ctx, cfg.Bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return 0, errors.Wrapf(object.Err, "list bucket %s", cfg.Bucket)
		}
		if !strings.Contains(object.Key, backupID) {
			continue
		}
		total += object.Size
	}

	return total, nil
}
