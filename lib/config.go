package lib

import (
	"os"

	"github.com/pkg/errors"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/backup"
	"gopkg.in/yaml.v3"
)

// MinioConfig enables post-backup artifact inspection against an
// S3-compatible backend when URL is set.
type MinioConfig struct {
	URL       string `yaml:"url"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// Config drives one scenario run.
type Config struct {
	Classes         []string    `yaml:"classes"`
	ObjectsPerStage int64       `yaml:"objectsPerStage"`
	BatchSize       int         `yaml:"batchSize"`
	QueryLimit      int         `yaml:"queryLimit"`
	ProgressEvery   int64       `yaml:"progressEvery"`
	Workers         int         `yaml:"workers"`
	Seed            int64       `yaml:"seed"`
	BackupID        string      `yaml:"backupID"`
	BackupBackend   string      `yaml:"backupBackend"`
	Minio           MinioConfig `yaml:"minio"`
}

// DefaultConfig mirrors the fixed constants of the original chaos script.
func DefaultConfig() Config {
	return Config{
		Classes:         []string{"Class_A", "Class_B"},
		ObjectsPerStage: 50000,
		BatchSize:       100,
		QueryLimit:      20,
		ProgressEvery:   10000,
		Workers:         8,
		BackupID:        "backup-and-restore-stage-1",
		BackupBackend:   backup.BACKEND_FILESYSTEM,
	}
}

// ParseConfig reads a yaml config file and overlays it onto the defaults.
func ParseConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "open scenario config at %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse scenario config")
	}
	return cfg, nil
}
