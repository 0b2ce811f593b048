package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/perlego-sync/internal/audit"
	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/database"
	auditRepo "github.com/mrlokans/perlego-sync/internal/database/audit"
	"github.com/mrlokans/perlego-sync/internal/database/runs"
	http_controllers "github.com/mrlokans/perlego-sync/internal/http"
	"github.com/mrlokans/perlego-sync/internal/importers"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/scheduler"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
	"github.com/mrlokans/perlego-sync/internal/storage"
	"github.com/mrlokans/perlego-sync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func openVault(dir string) *storage.Vault {
	log.Printf("Checking vault directory: %s\n", dir)
	if dir == "" {
		log.Fatalf("Vault directory is not set. Set 'VAULT_DIR' environment variable.")
	}

	vault, err := storage.NewVault(dir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := vault.CheckWritable(); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Vault directory %s is writable\n", dir)
	return vault
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Perlego Sync v%s", version)

	vault := openVault(cfg.Vault.Dir)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	cipher, err := settingsstore.ResolveCipher(db, cfg.Security)
	if err != nil {
		log.Printf("WARNING: Token encryption unavailable, the token can only come from %s: %v",
			settingsstore.EnvPerlegoToken, err)
	}
	settings := settingsstore.New(db, cipher)
	if !settings.HasToken() {
		log.Printf("WARNING: Perlego token is not set. Imports are disabled until one is configured via the settings API, 'set-token' or '%s'.",
			settingsstore.EnvPerlegoToken)
	}

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	runRepo := runs.NewRepository(db.DB)
	status := notify.NewStatus()

	client := perlego.NewClient(
		perlego.WithBaseURL(cfg.Perlego.APIURL),
		perlego.WithTimeout(cfg.Perlego.HTTPTimeout),
	)

	importer := importers.NewImporter(client, vault, config.DefaultFolder)
	importer.SetFolderFunc(settings.GetFolder)
	importer.SetReporter(notify.Multi{notify.Logger{}, status, notify.NewAudit(auditService)})
	importer.SetRecorder(runRepo)
	importer.SetAuditor(auditService)
	importer.SetVerbose(cfg.Log.Verbose)

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	syncScheduler := scheduler.NewPerlegoSyncScheduler(settings, importer)
	if err := syncScheduler.Start(appCtx); err != nil {
		log.Printf("WARNING: Failed to start Perlego sync scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:  db,
		Settings:  settings,
		Scheduler: syncScheduler,
		Runs:      runRepo,
		Audit:     auditService,
		Status:    status,
		Version:   version,
	}

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskCfg := tasks.ConfigFrom(cfg.Tasks)

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewImportQueue(syncScheduler, taskCfg.ImportTimeout),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		if _, err := taskClient.Add(tasks.CleanupAuditEventsTask{RetentionDays: cfg.Audit.RetentionDays}).Save(); err != nil {
			log.Printf("WARNING: Failed to enqueue audit cleanup: %v", err)
		}

		go taskClient.Start(appCtx)
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		// Running imports stop at the next book once appCtx is cancelled.
		appCancel()
		syncScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
	}

	Serve(router, cfg, onShutdown)
}
