package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	config "github.com/mwantia/godepot/internal/config/server"
	"github.com/mwantia/godepot/pkg/files"
	"github.com/mwantia/godepot/pkg/log"
)

// FileService is the boundary the HTTP layer consumes. It is
// implemented by *files.Service.
type FileService interface {
	Ingest(ctx context.Context, in files.IngestInput) (*files.FileInfo, error)
	GetMetadata(ctx context.Context, id string) (*files.FileInfo, error)
	OpenDownload(ctx context.Context, id string) (*files.Download, error)
	UpdateMetadata(ctx context.Context, id string, in files.UpdateInput) (*files.FileInfo, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts files.ListOptions) ([]files.FileInfo, int64, error)
	Summarize(ctx context.Context) (*files.Stats, error)
	Health(ctx context.Context) error
	MaxUploadSize() int64
}

// Server exposes the file service over HTTP
type Server struct {
	cfg     config.HTTPServerConfig
	storage config.StorageServerConfig
	svc     FileService
	log     log.LoggerService

	engine  *gin.Engine
	httpSrv *http.Server
	started time.Time
}

func NewServer(cfg *config.BaseServerConfig, svc FileService, logger log.LoggerService) *Server {
	s := &Server{
		cfg:     cfg.HTTP,
		storage: cfg.Storage,
		svc:     svc,
		log:     logger.Named("api"),
		started: time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) == 0 || (len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	engine.Use(cors.New(corsCfg))

	s.registerRoutes(engine)
	s.engine = engine

	return s
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	engine.GET("/", s.handleIndex)
	engine.GET("/health", s.handleHealth)

	// The url field of every record points below this prefix
	engine.Static(s.storage.URLPrefix, s.storage.UploadDirectory)

	api := engine.Group("/api/files")
	{
		api.GET("", s.handleList)
		api.POST("/upload", s.handleUpload)
		api.GET("/stats/summary", s.handleStats)
		api.GET("/:id", s.handleGet)
		api.GET("/:id/download", s.handleDownload)
		api.PUT("/:id", s.handleUpdate)
		api.DELETE("/:id", s.handleDelete)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"message": "Route not found",
				"status":  http.StatusNotFound,
				"path":    c.Request.URL.Path,
			},
		})
	})
}

// Router exposes the gin engine, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Start begins serving and blocks until the listener fails or is shut
// down.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.engine,
	}

	s.log.Info("Listening on %s", s.cfg.Address)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, waiting for in-flight requests up to
// the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "File Upload API Server",
		"status":  "running",
		"endpoints": gin.H{
			"health": "/health",
			"files":  "/api/files",
			"upload": "/api/files/upload",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	database := "connected"
	code := http.StatusOK
	if err := s.svc.Health(c.Request.Context()); err != nil {
		status = "unhealthy"
		database = "disconnected"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
		"uptime":    int64(time.Since(s.started).Seconds()),
	})
}
