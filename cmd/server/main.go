package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/blogeditor/blog/application"
	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/dfryer1193/blogeditor/blog/persistence"
	"github.com/dfryer1193/blogeditor/internal/config"
	"github.com/dfryer1193/blogeditor/internal/logger"
	"github.com/dfryer1193/blogeditor/internal/middleware"
	"github.com/dfryer1193/blogeditor/internal/rest"
	"github.com/dfryer1193/blogeditor/shared/db/sqlite"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const redisPingTimeout = 3 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	loaded := config.LoadDotEnv("")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if len(loaded) > 0 {
		log.Info().Strs("files", loaded).Msg("Loaded environment files")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	repo := st.repo
	if cfg.Redis.Enabled {
		if client := connectRedis(ctx, cfg.Redis); client != nil {
			defer client.Close()
			cacheCfg := persistence.DefaultCacheConfig()
			cacheCfg.TTL = cfg.Redis.TTL
			repo = persistence.NewCachedPostRepository(repo, client, cacheCfg)
		}
	}

	service := application.NewPostService(repo)
	router := newRouter(cfg, service, st.ping)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

// newRouter assembles middleware, operational endpoints and the blog API
func newRouter(cfg *config.Config, service rest.PostService, ping func(context.Context) error) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := ping(c.Request.Context()); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			rest.AbortWithError(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rest.NewApi(router, rest.NewPostHandler(service))
	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	c.ExposeHeaders = []string{middleware.RequestIDHeader}

	if len(cfg.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowOrigins
	return c
}

type store struct {
	repo  domain.PostRepository
	ping  func(context.Context) error
	close func()
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return openMySQL(ctx, cfg.Database)
	default:
		return openSQLite(cfg.Database)
	}
}

func openSQLite(cfg config.DatabaseConfig) (*store, error) {
	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.SQLitePath))
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &store{
		repo: persistence.NewPostRepository(database.DB()),
		ping: database.Ping,
		close: func() {
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		},
	}, nil
}

func openMySQL(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	gdb, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get mysql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)

	repo := persistence.NewGormPostRepository(gdb)
	if err := repo.AutoMigrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &store{
		repo: repo,
		ping: sqlDB.PingContext,
		close: func() {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close mysql connection")
			}
		},
	}, nil
}

// connectRedis returns nil when Redis is unreachable, leaving the store uncached
func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, serving without cache")
		client.Close()
		return nil
	}

	log.Info().Str("addr", cfg.Addr).Msg("Redis cache enabled")
	return client
}
