package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lavka/internal/app/inventory/config"
	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/handler"
	"lavka/internal/app/inventory/processor"
	"lavka/internal/app/inventory/repository"
	"lavka/internal/app/inventory/service"
	"lavka/internal/app/inventory/util"
	"lavka/pkg/logger"
	"lavka/pkg/metrics"
)

const serviceName = "inventory-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(serviceName, logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, serviceName, logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if err := db.AutoMigrate(
		&entity.Category{},
		&entity.Product{},
		&entity.Customer{},
		&entity.Sale{},
		&entity.SaleItem{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Отдельный pgx pool для отчетных запросов мимо ORM
	pool, err := connectPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create pgx pool")
	}
	defer pool.Close()
	go reportPoolStats(ctx, pool)

	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	mongoClient, err := connectMongoDB(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.Mongo.DBName).Msg("Connected to MongoDB")

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	reportRepo := repository.NewReportRepository(pool)
	auditRepo := repository.NewAuditRepository(mongoClient.Database(cfg.Mongo.DBName))

	catalogService := service.NewCatalogService(categoryRepo, productRepo, auditRepo, redisClient, kafkaProducer)
	customerService := service.NewCustomerService(customerRepo, saleRepo, auditRepo)
	saleService := service.NewSaleService(saleRepo, customerRepo, reportRepo, auditRepo, redisClient, kafkaProducer)

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTTLMins)*time.Minute)
	authMiddleware := handler.NewAuthMiddleware(jwtManager)

	authHandler := handler.NewAuthHandler(cfg.Admin, jwtManager)
	categoryHandler := handler.NewCategoryHandler(catalogService)
	productHandler := handler.NewProductHandler(catalogService)
	customerHandler := handler.NewCustomerHandler(customerService)
	saleHandler := handler.NewSaleHandler(saleService)

	router := handler.SetupRoutes(
		authHandler,
		categoryHandler,
		productHandler,
		customerHandler,
		saleHandler,
		authMiddleware,
	)

	scheduler := processor.NewCronScheduler(saleService, cfg.Jobs.LowStockThreshold)
	if err := scheduler.Start(ctx, cfg.Jobs.LowStockSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start low stock scheduler")
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Inventory Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Inventory Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Inventory Service stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectPool устанавливает соединение с PostgreSQL через pgx connection pool
// Retry logic с 10 попытками для устойчивости при запуске в Docker
func connectPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect pgx pool, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectMongoDB(cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(connectCtx, clientOptions)
		connectCancel()
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(pingCtx, nil)
			pingCancel()
			if err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

// reportPoolStats периодически экспортирует статистику pgx pool в Prometheus
func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stat := pool.Stat()
			metrics.DbConnectionsOpen.WithLabelValues(serviceName, "idle").Set(float64(stat.IdleConns()))
			metrics.DbConnectionsOpen.WithLabelValues(serviceName, "in_use").Set(float64(stat.AcquiredConns()))
		}
	}
}
