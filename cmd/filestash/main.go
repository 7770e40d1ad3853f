// Command filestash runs the HTTP file metadata and storage service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/filestash/internal/config"
	"github.com/rise-and-shine/filestash/internal/dispatch"
	"github.com/rise-and-shine/filestash/internal/httpapi"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/internal/session"
	"github.com/rise-and-shine/filestash/internal/usecase/auth"
	"github.com/rise-and-shine/filestash/internal/usecase/files"
	"github.com/rise-and-shine/filestash/pkg/alert"
	"github.com/rise-and-shine/filestash/pkg/cfgloader"
	"github.com/rise-and-shine/filestash/pkg/filestore"
	"github.com/rise-and-shine/filestash/pkg/filestore/diskwr"
	"github.com/rise-and-shine/filestash/pkg/filestore/miniowr"
	"github.com/rise-and-shine/filestash/pkg/http/server"
	"github.com/rise-and-shine/filestash/pkg/http/server/middleware"
	"github.com/rise-and-shine/filestash/pkg/kafka"
	"github.com/rise-and-shine/filestash/pkg/logger"
	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/rise-and-shine/filestash/pkg/pg"
	"github.com/rise-and-shine/filestash/pkg/rediswr"
	"github.com/rise-and-shine/filestash/pkg/tracing"
)

const migrateTimeout = 30 * time.Second

func main() {
	cfg := cfgloader.MustLoad[config.Config]()

	meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)
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

	if cfg.Service.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		if err := repository.Migrate(ctx, db); err != nil {
			cancel()
			log.Fatalx(err)
		}
		cancel()
	}

	if err := alert.SetGlobal(cfg.Alert, db); err != nil {
		log.Fatalx(err)
	}

	rdb := rediswr.New(cfg.Redis)
	sessions := session.NewManager(cfg.Session, rdb)

	store, err := buildFileStore(cfg.Blob)
	if err != nil {
		log.Fatalx(err)
	}

	dispatcher, closeProducer, err := buildDispatcher(cfg.Queue)
	if err != nil {
		log.Fatalx(err)
	}
	defer closeProducer()

	fileRepo := repository.NewFileRepo(db)
	userRepo := repository.NewUserRepo(db)

	filesSvc := files.NewService(cfg.Files, fileRepo, store, dispatcher)
	authSvc := auth.NewService(userRepo, sessions)

	srv := server.NewHTTPServer(cfg.HTTP, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(cfg.HTTP.HandleTimeout),
		middleware.NewMetaInjectMW(cfg.Service.Name, cfg.Service.Version),
		middleware.NewAlertingMW(),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(cfg.HTTP.HideErrorDetails),
	})

	srv.RegisterRouter(func(r fiber.Router) {
		httpapi.RegisterRoutes(r, httpapi.Deps{
			Auth:      authSvc,
			Files:     filesSvc,
			Sessions:  sessions,
			DB:        db,
			Redis:     rdb,
			FileRepo:  fileRepo,
			UserRepo:  userRepo,
			HideError: cfg.HTTP.HideErrorDetails,
		})
	})

	errCh := make(chan error, 1)
	go func() {
		log.With("addr", cfg.HTTP.Address()).Info("starting http server")
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.With("signal", sig.String()).Info("shutting down")
		if err := srv.Stop(); err != nil {
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

// buildDispatcher returns the dispatcher and a close function for the
// underlying producer (a no-op when the queue is disabled).
func buildDispatcher(cfg config.QueueConfig) (dispatch.Dispatcher, func(), error) {
	if cfg.Disable {
		return dispatch.Noop{}, func() {}, nil
	}

	producer, err := kafka.NewProducer(cfg.Producer, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Warnx(err)
		}
	}

	return dispatch.NewKafkaDispatcher(producer), closeFn, nil
}
