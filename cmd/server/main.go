package main

import (
	"context"
	"errors"
	"log"
	"runtime"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/config"
	"github.com/fadilmartias/form-evaluator/internal/domain/fiber/handler"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/fadilmartias/form-evaluator/internal/formconfig"
	"github.com/fadilmartias/form-evaluator/internal/middleware"
	"github.com/fadilmartias/form-evaluator/internal/model"
	"github.com/fadilmartias/form-evaluator/internal/repository"
	"github.com/fadilmartias/form-evaluator/internal/service"
	"github.com/fadilmartias/form-evaluator/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	err := godotenv.Load()
	if err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	scoringConfig := config.LoadScoringConfig()
	catalogConfig := config.LoadCatalogConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	mode, err := evaluator.ParseMode(scoringConfig.Mode)
	if err != nil {
		log.Fatal(err)
	}
	source, err := formconfig.ParseSource(catalogConfig.Source)
	if err != nil {
		log.Fatal(err)
	}
	catalog := formconfig.NewCatalog(catalogConfig.ManualPath, catalogConfig.LLMPath, source)
	if err := catalog.Reload(ctx); err != nil {
		log.Fatalf("Could not load form catalogue: %v", err)
	}

	judge, err := service.NewOptionalJudge(ctx, scoringConfig.JudgeProvider)
	if err != nil {
		log.Fatal(err)
	}
	if judge == nil {
		log.Println("Semantic judge disabled, dynamic fields will score 0")
	}

	dynamicTypes := make([]evaluator.FieldType, 0, len(scoringConfig.DynamicTypes))
	for _, t := range scoringConfig.DynamicTypes {
		dynamicTypes = append(dynamicTypes, evaluator.FieldType(t))
	}

	evaluationRepo := repository.NewEvaluationRepository(db)
	uc := usecase.NewEvaluationUsecase(evaluationRepo, catalog, judge, usecase.ScoringOptions{
		DefaultMode:  mode,
		DynamicTypes: dynamicTypes,
		Concurrency:  scoringConfig.JudgeConcurrency,
		JudgeTimeout: scoringConfig.JudgeTimeout,
	})
	evaluateHandler := handler.NewEvaluateHandler(uc)
	evaluateHandler.RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	err = db.AutoMigrate(&model.FormEvaluation{})
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
