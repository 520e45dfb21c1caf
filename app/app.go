package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thejerf/suture/v4"

	"dressing-virtuel/app/controller"
	"dressing-virtuel/app/router"
	"dressing-virtuel/config"
	"dressing-virtuel/db"
	"dressing-virtuel/logging"
	"dressing-virtuel/repository"
	"dressing-virtuel/service"
)

// App holds the supervised services of the process
type App struct {
	supervisor *suture.Supervisor
	queue      *service.SubmissionQueue
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database connection
	if err := db.InitDB(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	taxonomyRepo := repository.NewTaxonomyRepository()
	clientRepo := repository.NewClientRepository()
	garmentRepo := repository.NewGarmentRepository()

	// Initialize services
	taxonomyService := service.NewTaxonomyService(taxonomyRepo)
	imageStore := service.NewImageStore(cfg.Storage.Root, cfg.Storage.CacheDir)
	modelsClient := service.NewModelsClient(cfg.Models)

	pipeline := service.NewPipelineService(service.PipelineDeps{
		Taxonomy:   taxonomyService,
		Clients:    clientRepo,
		Garments:   garmentRepo,
		Images:     imageStore,
		Detector:   modelsClient,
		Matcher:    modelsClient,
		Segmenter:  modelsClient,
		Classifier: modelsClient,
	})

	queue, err := service.NewSubmissionQueue(pipeline, cfg.Queue.Mode, cfg.Queue.Buffer)
	if err != nil {
		return nil, err
	}

	var driveService service.DriveServiceInterface
	if cfg.Drive.CredentialsPath != "" {
		ds, err := service.NewDriveService(ctx, cfg.Drive.CredentialsPath)
		if err != nil {
			return nil, err
		}
		driveService = ds
	} else {
		logging.Warn().Msg("⚠️  GOOGLE_APPLICATION_CREDENTIALS is not set, Drive submissions are disabled")
	}
	intake := service.NewIntakeService(cfg.Storage.TmpDir, driveService)

	suggestions, err := service.NewSuggestionService(garmentRepo, service.NewWeatherService(cfg.Weather), cfg.Suggestion)
	if err != nil {
		return nil, err
	}
	lookbook := service.NewLookbookService(garmentRepo, cfg.Lookbook.BaseURL, cfg.Lookbook.ChromePath)

	// Create controllers
	controllers := &router.Controllers{
		Submission: controller.NewSubmissionController(intake, queue),
		Suggestion: controller.NewSuggestionController(suggestions),
		Garment:    controller.NewGarmentController(garmentRepo, taxonomyService, imageStore),
		Client:     controller.NewClientController(clientRepo),
		Lookbook:   controller.NewLookbookController(suggestions, lookbook),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)

	supervisor := suture.New("dressing-virtuel", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Str("event", e.String()).Msg("⚠️  Supervisor event")
		},
		Timeout: 15 * time.Second,
	})
	supervisor.Add(&httpService{addr: listenAddr(cfg.Server.Port), handler: mux})
	supervisor.Add(queue)

	return &App{supervisor: supervisor, queue: queue}, nil
}

// Run blocks until ctx is cancelled or a service fails for good
func (a *App) Run(ctx context.Context) error {
	defer a.queue.Close()
	err := a.supervisor.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// listenAddr listens on 0.0.0.0 so the server is reachable from containers
func listenAddr(port string) string {
	return "0.0.0.0:" + strings.TrimPrefix(port, ":")
}

// httpService runs the HTTP server under the supervisor
type httpService struct {
	addr    string
	handler http.Handler
}

func (s *httpService) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("🚀 Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("❌ HTTP server shutdown failed")
		}
		return ctx.Err()
	}
}

func (s *httpService) String() string {
	return "http-server"
}
