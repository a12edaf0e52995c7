package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/hotel-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
	notificationHttp "github.com/nekogravitycat/hotel-booking-backend/internal/notification/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/roomcategory"
	roomCategoryHttp "github.com/nekogravitycat/hotel-booking-backend/internal/roomcategory/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/hotel-booking-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService         user.Service
	CategoryService     roomcategory.Service
	RoomService         room.Service
	BookingService      booking.Service
	NotificationService notification.Service
	JWTManager          *auth.JWTManager

	// Limiter guards booking mutations. Nil disables rate limiting.
	Limiter         ratelimit.Limiter
	RateLimitPrefix string

	// HealthCheck reports dependency health for GET /health. Nil always reports ok.
	HealthCheck func(ctx context.Context) error
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:8081", // Swagger
		"http://localhost:3000", // Frontend dev server
	}
	if origins := splitOrigins(cfg.ProdOrigins); cfg.IsProduction && len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		if cfg.HealthCheck != nil {
			if err := cfg.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// roleMiddleware: Loads the user and records whether they are an administrator.
	roleMiddleware := LoadRole(cfg.UserService)
	// adminMiddleware: Rejects users who are not administrators.
	adminMiddleware := RequireAdmin(cfg.UserService)
	rateLimit := ratelimit.Middleware(cfg.Limiter, cfg.RateLimitPrefix)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	categoryHandler := roomCategoryHttp.NewHandler(cfg.CategoryService)
	roomHandler := roomHttp.NewHandler(cfg.RoomService, cfg.BookingService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	notificationHandler := notificationHttp.NewHandler(cfg.NotificationService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, roleMiddleware, adminMiddleware)
		roomCategoryHttp.RegisterRoutes(v1, categoryHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, roleMiddleware, rateLimit)
		notificationHttp.RegisterRoutes(v1, notificationHandler, authMiddleware, roleMiddleware)
	}

	return r
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
