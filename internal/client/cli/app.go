package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dverbitsky/chronokeeper/internal/client/assistant"
	"github.com/dverbitsky/chronokeeper/internal/client/config"
	"github.com/dverbitsky/chronokeeper/internal/client/connectivity"
	"github.com/dverbitsky/chronokeeper/internal/client/remote"
	"github.com/dverbitsky/chronokeeper/internal/client/services"
	"github.com/dverbitsky/chronokeeper/internal/client/storage"
	"github.com/dverbitsky/chronokeeper/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config       *config.Config
	db           *sql.DB
	eventService services.EventService
	assistantSvc services.AssistantService
	profileSvc   services.ProfileService
	monitor      *connectivity.PollingMonitor
	logger       logging.Logger
	Mode         Mode
	unlocked     bool
	reader       *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dbPath := filepath.Join(c.DataDir, "calendar.db")
	db, repos, err := storage.InitDatabase(ctx, dbPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}
	apiClient := remote.NewHTTPClient(c.ServerEndpointAddr, c.RemoteTimeout)
	assistantClient := assistant.NewHTTPClient(c.AssistantEndpointAddr, c.RemoteTimeout)

	monitor := connectivity.NewPollingMonitor(apiClient, c.OnlineCheckInterval, c.RemoteTimeout, logger)

	es := services.NewEventService(repos.Events, apiClient, monitor, logger, c.RemoteTimeout)
	as := services.NewAssistantService(assistantClient, es, repos.Chat, monitor, logger)
	ps := services.NewProfileService(repos.Profile, repos.Events, repos.Chat)

	app := &App{
		config:       c,
		db:           db,
		eventService: es,
		assistantSvc: as,
		profileSvc:   ps,
		monitor:      monitor,
		logger:       logger,
		Mode:         ModeOffline,
		reader:       bufio.NewReader(os.Stdin),
	}

	monitor.Subscribe(func(online bool) {
		if online {
			app.Mode = ModeOnline
			go func() {
				if err := es.Reconcile(context.Background()); err != nil {
					logger.Warn(context.Background(), "reconcile after reconnect failed", "error", err)
				}
			}()
		} else {
			app.Mode = ModeOffline
		}
	})

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	defer a.eventService.Flush()

	go a.monitor.Start(ctx)

	if err := a.eventService.Refresh(ctx); err != nil {
		log.Printf("error loading events: %s", err.Error())
	}

	a.Root(ctx)
}
