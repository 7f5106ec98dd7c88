// Package httpapi exposes the REST API under /api using gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/medimate/internal/logging"
	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/dmitrijs2005/medimate/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AudioService interface {
	Upload(ctx context.Context, callerID string, in services.UploadInput) (*models.AudioRecord, error)
	List(ctx context.Context, callerID string) ([]*models.AudioRecord, error)
	Get(ctx context.Context, callerID, id string) (*models.RecordWithFile, error)
	Download(ctx context.Context, callerID, id string) (*models.Blob, error)
	Update(ctx context.Context, callerID, id string, in services.UpdateInput) (*models.AudioRecord, error)
	Delete(ctx context.Context, callerID, id string) error
}

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// Pinger reports database reachability. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the router.
type Deps struct {
	Audio          AudioService
	Users          UserService
	DB             Pinger
	SecretKey      []byte
	MaxUploadBytes int64
	Logger         logging.Logger
}

// API holds the handlers.
type API struct {
	audio AudioService
	users UserService
	db    Pinger
	log   logging.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	log := d.Logger.With("module", "http")

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))
	engine.Use(CORS())
	engine.Use(MaxBodySize(d.MaxUploadBytes))

	api := &API{audio: d.Audio, users: d.Users, db: d.DB, log: log}
	registerRoutes(engine, api, Auth(d.SecretKey))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return engine
}

func registerRoutes(r *gin.Engine, api *API, requireAuth gin.HandlerFunc) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)

		authGroup := apiGroup.Group("/auth")
		authGroup.POST("/register", api.handleRegister)
		authGroup.POST("/login", api.handleLogin)
		authGroup.GET("/profile", requireAuth, api.handleProfile)

		audio := apiGroup.Group("/audio", requireAuth)
		audio.POST("/upload", api.handleUpload)
		audio.GET("/files", api.handleListRecords)
		audio.GET("/file/:id", api.handleGetRecord)
		audio.GET("/file/:id/download", api.handleDownload)
		audio.PUT("/file/:id", api.handleUpdateRecord)
		audio.DELETE("/file/:id", api.handleDeleteRecord)
	}
}
