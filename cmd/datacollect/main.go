// Точка входа datacollect — сервис сбора данных по пользовательским формам.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// собирает репозитории, сервисы и API handlers, запускает topologymetrics
// и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/datacollect/internal/api/handlers"
	"github.com/bigkaa/datacollect/internal/api/middleware"
	"github.com/bigkaa/datacollect/internal/config"
	"github.com/bigkaa/datacollect/internal/database"
	"github.com/bigkaa/datacollect/internal/repository"
	"github.com/bigkaa/datacollect/internal/server"
	"github.com/bigkaa/datacollect/internal/service"
	"github.com/bigkaa/datacollect/internal/storage/filestore"
)

// staleExportAge — возраст временных файлов, удаляемых при старте.
const staleExportAge = time.Hour

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("datacollect запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("timezone", cfg.Location.String()),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Директория временных файлов экспорта
	files, err := filestore.New(cfg.ExportDir)
	if err != nil {
		logger.Error("Ошибка инициализации директории экспорта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if removed, purgeErr := files.PurgeStale(staleExportAge); purgeErr != nil {
		logger.Warn("Не удалось очистить директорию экспорта", slog.String("error", purgeErr.Error()))
	} else if removed > 0 {
		logger.Info("Удалены оставшиеся файлы экспорта",
			slog.Int("count", removed),
			slog.String("dir", files.Dir()),
		)
	}

	// 6. Repositories
	fieldRepo := repository.NewFieldRepository(pool)
	recordRepo := repository.NewRecordRepository(pool)
	historyRepo := repository.NewExportHistoryRepository(pool)

	// 7. Services
	fieldSvc := service.NewFieldService(fieldRepo, logger)
	recordSvc := service.NewRecordService(fieldRepo, recordRepo, cfg.Location, logger)
	exportSvc := service.NewExportService(fieldRepo, recordRepo, historyRepo, files, cfg.Location, logger)
	reportSvc := service.NewReportService(recordRepo, cfg.Location, logger)

	// 8. Health и API handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), files)
	apiHandler := handlers.NewAPIHandler(healthHandler, fieldSvc, recordSvc, exportSvc, reportSvc, logger)

	// 9. JWT middleware: JWKS (RS256) или общий секрет (HS256)
	var jwtAuth *middleware.JWTAuth
	if cfg.JWTJWKSURL != "" {
		jwtAuth, err = middleware.NewJWTAuth(
			cfg.JWTJWKSURL,
			cfg.CACertPath,
			cfg.JWTIssuer,
			cfg.JWKSClientTimeout,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			logger,
		)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("JWT middleware инициализирован (JWKS)",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		jwtAuth = middleware.NewJWTAuthWithSecret([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTLeeway, logger)
		logger.Info("JWT middleware инициализирован (HS256)",
			slog.String("issuer", cfg.JWTIssuer),
		)
	}

	// 10. topologymetrics — мониторинг PostgreSQL
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"datacollect",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		cfg.DephealthIsEntry,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
	} else {
		defer dephealthSvc.Stop()
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 11. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler,
		jwtAuth.Middleware(),
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 12. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("datacollect остановлен")
}
