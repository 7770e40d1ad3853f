// Package config aggregates the service configuration.
package config

import (
	"github.com/rise-and-shine/filestash/internal/session"
	"github.com/rise-and-shine/filestash/internal/usecase/files"
	"github.com/rise-and-shine/filestash/pkg/alert"
	"github.com/rise-and-shine/filestash/pkg/filestore/diskwr"
	"github.com/rise-and-shine/filestash/pkg/filestore/miniowr"
	"github.com/rise-and-shine/filestash/pkg/http/server"
	"github.com/rise-and-shine/filestash/pkg/kafka"
	"github.com/rise-and-shine/filestash/pkg/logger"
	"github.com/rise-and-shine/filestash/pkg/pg"
	"github.com/rise-and-shine/filestash/pkg/rediswr"
	"github.com/rise-and-shine/filestash/pkg/tracing"
)

// Blob backend names.
const (
	BlobBackendDisk  = "disk"
	BlobBackendMinio = "minio"
)

// Config is the root configuration of both binaries.
type Config struct {
	Service ServiceConfig `yaml:"service"`

	HTTP     server.Config  `yaml:"http"`
	Logger   logger.Config  `yaml:"logger"`
	Postgres pg.Config      `yaml:"postgres"`
	Redis    rediswr.Config `yaml:"redis"`
	Blob     BlobConfig     `yaml:"blob"`
	Queue    QueueConfig    `yaml:"queue"`
	Worker   WorkerConfig   `yaml:"worker"`
	Alert    alert.Config   `yaml:"alert"`
	Tracing  tracing.Config `yaml:"tracing"`
	Session  session.Config `yaml:"session"`
	Files    files.Config   `yaml:"files"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string `yaml:"name"    default:"filestash"`
	Version string `yaml:"version" default:"0.1.0"`

	// Migrate applies the embedded schema on startup.
	Migrate bool `yaml:"migrate" default:"true"`
}

// BlobConfig selects and configures the blob storage backend.
type BlobConfig struct {
	Backend string `yaml:"backend" validate:"oneof=disk minio" default:"disk"`

	Disk  diskwr.Config  `yaml:"disk"`
	Minio miniowr.Config `yaml:"minio"`
}

// QueueConfig configures the image job producer.
type QueueConfig struct {
	// Disable swaps the kafka dispatcher for a no-op one.
	Disable bool `yaml:"disable" default:"false"`

	Topic    string               `yaml:"topic" default:"file-jobs"`
	Producer kafka.ProducerConfig `yaml:"producer"`
}

// WorkerConfig configures the thumbnail consumer.
type WorkerConfig struct {
	Topic    string               `yaml:"topic" default:"file-jobs"`
	Consumer kafka.ConsumerConfig `yaml:"consumer"`
}
