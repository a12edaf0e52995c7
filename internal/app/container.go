package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/hotel-booking-backend/internal/api"
	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	"github.com/nekogravitycat/hotel-booking-backend/internal/roomcategory"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	HotelLocation          *time.Location
	BookingCodeMaxAttempts int
	TxMaxRetries           int

	Storage storage.Storage

	// Redis is optional; nil disables rate limiting.
	Redis                   *redis.Client
	RateLimitEnabled        bool
	RateLimitCapacity       int
	RateLimitRefillInterval time.Duration
	RateLimitPrefix         string

	// Publisher receives every booking event in addition to the in-app store. Optional.
	Publisher notification.Emitter
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Room Category Module
	categoryRepo := roomcategory.NewPgxRepository(cfg.DBPool)
	categoryService := roomcategory.NewService(categoryRepo, cfg.Storage)

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool, cfg.TxMaxRetries)
	roomService := room.NewService(roomRepo, categoryService)

	// Notification Module
	notificationRepo := notification.NewPgxRepository(cfg.DBPool)
	notificationService := notification.NewService(notificationRepo)

	var emitter notification.Emitter = notificationService
	if cfg.Publisher != nil {
		emitter = notification.MultiEmitter{notificationService, cfg.Publisher}
	}

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool, cfg.TxMaxRetries)
	bookingService := booking.NewService(
		bookingRepo,
		booking.NewCodeGenerator(cfg.BookingCodeMaxAttempts),
		booking.SystemClock{Location: cfg.HotelLocation},
		emitter,
	)

	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled && cfg.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(cfg.Redis, cfg.RateLimitCapacity, cfg.RateLimitRefillInterval)
	}

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		UserService:         userService,
		CategoryService:     categoryService,
		RoomService:         roomService,
		BookingService:      bookingService,
		NotificationService: notificationService,
		JWTManager:          jwtManager,
		Limiter:             limiter,
		RateLimitPrefix:     cfg.RateLimitPrefix,
		HealthCheck: func(ctx context.Context) error {
			return cfg.DBPool.Ping(ctx)
		},
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
