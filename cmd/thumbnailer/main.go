// Command thumbnailer consumes image jobs and writes resized derivatives.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rise-and-shine/filestash/internal/config"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/internal/worker"
	"github.com/rise-and-shine/filestash/pkg/alert"
	"github.com/rise-and-shine/filestash/pkg/cfgloader"
	"github.com/rise-and-shine/filestash/pkg/filestore"
	"github.com/rise-and-shine/filestash/pkg/filestore/diskwr"
	"github.com/rise-and-shine/filestash/pkg/filestore/miniowr"
	"github.com/rise-and-shine/filestash/pkg/kafka"
	"github.com/rise-and-shine/filestash/pkg/logger"
	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/rise-and-shine/filestash/pkg/pg"
	"github.com/rise-and-shine/filestash/pkg/tracing"
)

func main() {
	cfg := cfgloader.MustLoad[config.Config]()

	meta.SetServiceInfo(cfg.Service.Name+"-thumbnailer", cfg.Service.Version)
	logger.SetGlobal(cfg.Logger)
	log := logger.Named("main")

	shutdownTracer, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		log.Fatalx(err)
	}
	defer func() {
		if err := shutdownTracer(); err != nil {
			log.Warnx(err)
		}
	}()

	db, err := pg.NewBunDB(cfg.Postgres)
	if err != nil {
		log.Fatalx(err)
	}
	defer db.Close()

	if err := alert.SetGlobal(cfg.Alert, db); err != nil {
		log.Fatalx(err)
	}

	store, err := buildFileStore(cfg.Blob)
	if err != nil {
		log.Fatalx(err)
	}

	thumbnailer := worker.NewThumbnailer(repository.NewFileRepo(db), store)

	consumer, err := kafka.NewConsumer(cfg.Worker.Consumer, cfg.Worker.Topic, thumbnailer.HandleMessage)
	if err != nil {
		log.Fatalx(err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.With("topic", cfg.Worker.Topic).Info("starting consumer")
		errCh <- consumer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.With("signal", sig.String()).Info("shutting down")
		if err := consumer.Stop(); err != nil {
			log.Errorx(err)
		}
	case err := <-errCh:
		if err != nil {
			log.Errorx(err)
		}
	}

	_ = logger.Sync()
}

func buildFileStore(cfg config.BlobConfig) (filestore.FileStore, error) {
	if cfg.Backend == config.BlobBackendMinio {
		return miniowr.New(cfg.Minio)
	}
	return diskwr.New(cfg.Disk)
}
