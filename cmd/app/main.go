package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	httpin "github.com/carewell-hms/allocation-service/internal/adapters/in/http"
	"github.com/carewell-hms/allocation-service/internal/adapters/in/rabbitmq"
	"github.com/carewell-hms/allocation-service/internal/adapters/out/cache"
	"github.com/carewell-hms/allocation-service/internal/adapters/out/catalog"
	"github.com/carewell-hms/allocation-service/internal/adapters/out/logger"
	"github.com/carewell-hms/allocation-service/internal/adapters/out/mongo"
	"github.com/carewell-hms/allocation-service/internal/config"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
	"github.com/carewell-hms/allocation-service/internal/core/services"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoAdapter, err := mongo.NewMongoAdapter(ctx, cfg, mainLogger.WithModule("MongoAdapter"))
	if err != nil {
		log.Error("app.mongo.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		if err := mongoAdapter.Close(context.Background()); err != nil {
			log.Error("app.mongo.close_failed", out.LogFields{
				"error": err.Error(),
			})
		}
	}()

	catalogAdapter := catalog.NewCatalogAdapter(cfg, mainLogger.WithModule("CatalogAdapter"))

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		categoryCache, err := cache.NewCategoryCacheAdapter(cfg, mainLogger.WithModule("CacheAdapter"))
		if err != nil {
			log.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = categoryCache
	}

	scheduleService := services.NewScheduleService(mongoAdapter, mongoAdapter, mainLogger)
	technicianService := services.NewTechnicianService(mongoAdapter, catalogAdapter, cacheAdapter, mainLogger)

	router := gin.Default()
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})

	api := router.Group("/api/v1", httpin.BasicAuth(cfg), httpin.ActorContext())
	httpin.NewScheduleController(scheduleService).RegisterRoutes(api)
	httpin.NewTechnicianController(technicianService).RegisterRoutes(api)

	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewLabOrderListener(
			technicianService,
			cacheAdapter,
			cfg,
			mainLogger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		if err := listener.Start(ctx); err != nil {
			log.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				log.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	if cfg.IsLocal() {
		log.Debug("app.config.debug", out.LogFields{
			"config": map[string]interface{}{
				"http": map[string]string{
					"host": cfg.HTTP.Host,
					"port": cfg.HTTP.Port,
				},
				"mongo": map[string]string{
					"database": cfg.Mongo.Database,
				},
				"catalog": map[string]string{
					"url":      cfg.Catalog.URL,
					"username": cfg.Catalog.Username,
				},
				"rabbitmq": map[string]interface{}{
					"enabled": cfg.RabbitMQ.Enabled,
					"queue":   cfg.RabbitMQ.Queue,
				},
				"cache": map[string]interface{}{
					"enabled":       cfg.Cache.Enabled,
					"category_size": cfg.Cache.CategorySize,
				},
			},
		})
	}
}
