package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	"github.com/bryanshihpeng/AhaAI-exam-backend/provider/firebase"
)

func main() {
	cfg, err := auth.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repos := auth.NewRepositoryManager(db)
	accounts := repos.Accounts()

	dispatcher := auth.NewDispatcher(nil)

	cache := auth.NewSessionCache(accounts)
	coordinator := auth.NewSessionCoordinator(accounts, cache, cfg)
	coordinator.Subscribe(dispatcher)
	coordinator.Start(ctx)

	auther := auth.NewAuthenticator(accounts, dispatcher, cfg).
		WithExternalValidator(firebase.NewTokenValidator(firebase.Config{}))

	guard := auth.NewHTTPAuth(auther, dispatcher)
	controller := auth.NewController(auther, guard, accounts, cfg)

	var app *fiber.App
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		app = router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
		return app
	})

	controller.RegisterRoutes(srv.Router())

	go func() {
		if err := srv.Serve(cfg.HTTPAddress); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// stop the sweep loop, drain in-flight events, then flush the cache so
	// no buffered activity is lost
	coordinator.Stop()
	dispatcher.Wait()
	coordinator.Flush(ctx)
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*auth.Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func waitExitSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
}
