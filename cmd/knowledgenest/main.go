package main

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/knowledgenest/internal/config"
	courseApp "github.com/davicafu/knowledgenest/internal/course/application"
	courseDomain "github.com/davicafu/knowledgenest/internal/course/domain"
	courseHttp "github.com/davicafu/knowledgenest/internal/course/infra/inbound/http"
	courseMongo "github.com/davicafu/knowledgenest/internal/course/infra/outbound/db/mongodb"
	courseRepo "github.com/davicafu/knowledgenest/internal/course/infra/outbound/db/sqlite"
	"github.com/davicafu/knowledgenest/internal/infra/broker"
	reviewApp "github.com/davicafu/knowledgenest/internal/review/application"
	reviewDomain "github.com/davicafu/knowledgenest/internal/review/domain"
	reviewHttp "github.com/davicafu/knowledgenest/internal/review/infra/inbound/http"
	reviewPostgres "github.com/davicafu/knowledgenest/internal/review/infra/outbound/db/postgres"
	reviewRepo "github.com/davicafu/knowledgenest/internal/review/infra/outbound/db/sqlite"
	userApp "github.com/davicafu/knowledgenest/internal/user/application"
	userDomain "github.com/davicafu/knowledgenest/internal/user/domain"
	userHttp "github.com/davicafu/knowledgenest/internal/user/infra/inbound/http"
	userCache "github.com/davicafu/knowledgenest/internal/user/infra/outbound/cache"
	userRepo "github.com/davicafu/knowledgenest/internal/user/infra/outbound/db/sqlite"
	"github.com/davicafu/knowledgenest/pkg/logger"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open SQLite", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping SQLite", zap.Error(err))
	}

	if err := userRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize users schema", zap.Error(err))
	}
	if err := courseRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize courses schema", zap.Error(err))
	}
	if err := reviewRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize reviews schema", zap.Error(err))
	}

	userRepoSQLite := userRepo.NewUserRepoSQLite(db)

	var courseRepository courseDomain.CourseRepository = courseRepo.NewCourseRepoSQLite(db)
	if cfg.UseMongo {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoClient.Disconnect(ctx)

		repo, err := courseMongo.NewCourseRepoMongoDB(ctx, mongoClient, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB course repo", zap.Error(err))
		}
		courseRepository = repo
		log.Info("✅ MongoDB conectado para el catálogo de cursos")
	}

	var reviewRepository reviewDomain.ReviewRepository = reviewRepo.NewReviewRepoSQLite(db)
	if cfg.UsePostgres {
		pgDB, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open PostgreSQL", zap.Error(err))
		}
		defer pgDB.Close()

		if err := reviewPostgres.InitPostgres(pgDB); err != nil {
			log.Fatal("failed to initialize PostgreSQL reviews schema", zap.Error(err))
		}
		reviewRepository = reviewPostgres.NewReviewRepoPostgres(pgDB)
		log.Info("✅ PostgreSQL conectado para reseñas")
	}

	// ---------------- Cache ----------------
	var cacheInstance userDomain.UserCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = userCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = userCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Events ---------------
	client := broker.NewClient(broker.Config{
		Host:        cfg.RabbitHost,
		Port:        cfg.RabbitPort,
		Username:    cfg.RabbitUser,
		Password:    cfg.RabbitPass,
		VHost:       cfg.RabbitVHost,
		Heartbeat:   cfg.Heartbeat,
		DialTimeout: cfg.DialTimeout,
		Retry: broker.Policy{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.InitialBackoff,
			MaxDelay:     cfg.MaxBackoff,
		},
	}, log)
	defer client.Close()

	if client.EnsureConnection(ctx) {
		log.Info("✅ RabbitMQ conectado", zap.String("exchange", cfg.ExchangeName))
	} else {
		log.Warn("⚠️ RabbitMQ no disponible al arrancar; los eventos se reintentarán al publicar")
	}

	publisher := broker.NewBoundPublisher(client, cfg.ExchangeName)

	// --------------- Servicios --------------
	userService := userApp.NewUserService(userRepoSQLite, cacheInstance, publisher, log)
	courseService := courseApp.NewCourseService(courseRepository, publisher, log)
	reviewService := reviewApp.NewReviewService(reviewRepository, publisher, log)

	// ---------------- HTTP ----------------
	router := gin.Default()
	userHttp.RegisterUserRoutes(router, userHttp.NewUserHandler(userService))
	courseHttp.RegisterCourseRoutes(router, courseHttp.NewCourseHandler(courseService))
	reviewHttp.RegisterReviewRoutes(router, reviewHttp.NewReviewHandler(reviewService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
