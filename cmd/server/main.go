package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/riftline/geodispatch/internal/api"
	"github.com/riftline/geodispatch/internal/api/middleware"
	"github.com/riftline/geodispatch/internal/areaconfig"
	"github.com/riftline/geodispatch/internal/config"
	"github.com/riftline/geodispatch/internal/dispatch"
	"github.com/riftline/geodispatch/internal/dispatch/modes"
	"github.com/riftline/geodispatch/internal/eventsource"
	"github.com/riftline/geodispatch/internal/eventsource/browserfeed"
	"github.com/riftline/geodispatch/internal/eventsource/postgres"
	"github.com/riftline/geodispatch/internal/eventsource/remotefeed"
	"github.com/riftline/geodispatch/internal/geofence"
	"github.com/riftline/geodispatch/internal/models"
	"github.com/riftline/geodispatch/internal/planner"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	areaStore := areaconfig.NewStore(cfg.Area.AreaConfigPath)
	areas, err := areaStore.Load()
	if err != nil {
		log.Fatalf("Failed to load area config: %v", err)
	}
	if len(areas) == 0 {
		areas = []areaconfig.Area{{Name: "default", Init: true}}
	}

	managers := make(map[string]*dispatch.Manager, len(areas))
	for _, area := range areas {
		m, err := buildManager(cfg, areaStore, area)
		if err != nil {
			log.Fatalf("Failed to build manager for area %q: %v", area.Name, err)
		}
		managers[area.Name] = m
	}

	log.Println("Starting background priority-queue refresh for each area...")
	for name, m := range managers {
		m.Start()
		log.Printf("[%s] manager started (mode=%s init=%v)", name, m.Mode(), m.Init())
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORS.AllowOrigins,
		AllowMethods:     cfg.Server.CORS.AllowMethods,
		AllowHeaders:     cfg.Server.CORS.AllowHeaders,
		ExposeHeaders:    cfg.Server.CORS.ExposeHeaders,
		AllowCredentials: cfg.Server.CORS.AllowCredentials,
		MaxAge:           cfg.Server.CORS.MaxAge,
	}))

	handler := api.NewHandler(managers)
	handler.Register(router)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	log.Printf("Starting geodispatch server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildManager assembles one area's Manager from a coordinates file named
// "<area>.coords.json" in the working directory, with an optional
// "<area>.geofence.json" there for include/exclude polygons.
func buildManager(cfg *config.Config, areaStore *areaconfig.Store, area areaconfig.Area) (*dispatch.Manager, error) {
	coords, err := loadCoords(area.Name + ".coords.json")
	if err != nil {
		return nil, err
	}

	include, exclude := loadGeofence(area.Name + ".geofence.json")
	geofenceHelper := geofence.NewPolygonHelper(include, exclude)

	base := planner.GreedyPlanner{}
	cachingPlanner := planner.NewFileCachingPlanner(base, cfg.Area.RouteCacheDir+"/"+area.Name+".route")

	eventSource, err := buildEventSource(cfg, area.Name)
	if err != nil {
		log.Printf("[%s] event source unavailable: %v", area.Name, err)
	}

	delay := cfg.Area.PriorityWindowSeconds
	var mode dispatch.Mode
	var settings dispatch.Settings
	if eventSource != nil {
		mode = &modes.PriorityOverlayMode{
			Source: eventSource,
			Criteria: dispatch.ClusterCriteria{
				WindowSeconds: cfg.Area.PriorityWindowSeconds,
				WindowMeters:  cfg.Area.PriorityWindowMeters,
			},
			UpdateInterval: cfg.Area.PriorityUpdateInterval,
		}
		settings = dispatch.Settings{
			DelayAfterPrioEvent:    &delay,
			StarveRoute:            cfg.Area.StarveRoute,
			RemoveFromQueueBacklog: cfg.Area.RemoveFromQueueBacklog,
			InitModeRounds:         cfg.Area.InitModeRounds,
			IdleTimeout:            time.Duration(cfg.Area.IdleTimeoutSeconds) * time.Second,
		}
	} else {
		mode = modes.StandardMode{}
		settings = dispatch.Settings{
			InitModeRounds: cfg.Area.InitModeRounds,
			IdleTimeout:    time.Duration(cfg.Area.IdleTimeoutSeconds) * time.Second,
		}
	}

	return dispatch.NewManager(dispatch.Config{
		Name:           area.Name,
		Mode:           mode,
		Settings:       settings,
		GeofenceHelper: geofenceHelper,
		Planner:        cachingPlanner,
		MaxRadius:      cfg.Area.MaxRadius,
		MaxPerCluster:  cfg.Area.MaxPerCluster,
		Calctype:       cfg.Area.Calctype,
		CoordsRaw:      coords,
		AreaConfig:     areaStore,
		Init:           area.Init,
	}), nil
}

// buildEventSource constructs the priority event feed selected by
// EVENT_SOURCE_KIND for area. An empty or "none" Kind, a kind whose required
// settings are missing, or an unknown kind yields a nil Source, which falls
// back to StandardMode. Reachability of the backing service is not checked.
func buildEventSource(cfg *config.Config, areaName string) (eventsource.Source, error) {
	switch cfg.Area.EventSource.Kind {
	case "", "none":
		return nil, nil

	case "postgres":
		if cfg.Database.Host == "" {
			return nil, fmt.Errorf("EVENT_SOURCE_KIND=postgres but DB_HOST is unset")
		}
		db, err := sql.Open("postgres", cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		return postgres.NewSource(postgres.NewPostgresRepository(db)), nil

	case "browser":
		if cfg.Area.EventSource.BrowserURL == "" {
			return nil, fmt.Errorf("EVENT_SOURCE_KIND=browser but EVENT_SOURCE_BROWSER_URL is unset")
		}
		return browserfeed.New(cfg.Area.EventSource.BrowserURL), nil

	case "remote":
		rf := cfg.Area.EventSource
		if rf.RemoteFeedURL == "" || rf.RemoteTokenURL == "" {
			return nil, fmt.Errorf("EVENT_SOURCE_KIND=remote requires EVENT_SOURCE_REMOTE_FEED_URL and EVENT_SOURCE_REMOTE_TOKEN_URL")
		}
		return remotefeed.New(remotefeed.Config{
			TokenURL:     rf.RemoteTokenURL,
			ClientID:     rf.RemoteClientID,
			ClientSecret: rf.RemoteClientSecret,
			FeedURL:      rf.RemoteFeedURL,
		}), nil

	default:
		return nil, fmt.Errorf("unknown EVENT_SOURCE_KIND %q for area %s", cfg.Area.EventSource.Kind, areaName)
	}
}

func loadCoords(path string) ([]models.Location, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var coords []models.Location
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, err
	}
	return coords, nil
}

func loadGeofence(path string) (include, exclude []geofence.Ring) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	var doc struct {
		Include [][]models.Location `json:"include"`
		Exclude [][]models.Location `json:"exclude"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("ignoring malformed geofence file %s: %v", path, err)
		return nil, nil
	}
	for _, ring := range doc.Include {
		include = append(include, geofence.Ring(ring))
	}
	for _, ring := range doc.Exclude {
		exclude = append(exclude, geofence.Ring(ring))
	}
	return include, exclude
}
