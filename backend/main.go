package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms/backend/commands"
	"lms/backend/config"
	"lms/backend/database"
	"lms/backend/jobs"
	"lms/backend/mail"
	"lms/backend/routes"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:   "lms",
		Usage:  "learning management backend",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server with background workers",
				Action: serve,
			},
			{
				Name:  "create-moderator",
				Usage: "create or update a user in the Moderator group",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: createModerator,
			},
			{
				Name:   "seed-payments",
				Usage:  "add demo users and payments",
				Action: seedPayments,
			},
			{
				Name:   "deactivate-inactive",
				Usage:  "deactivate users who have not logged in for INACTIVITY_PERIOD",
				Action: deactivateInactive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func bootstrap() (*config.Config, *gorm.DB, *log.Logger, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init database: %w", err)
	}
	return cfg, db, logger, nil
}

func serve(cCtx *cli.Context) error {
	cfg, db, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	mailer := mail.New(cfg.SendGridAPIKey, cfg.SendGridHost, cfg.EmailFrom, logger)
	queue := jobs.NewQueue(cfg.WorkerCount, cfg.QueueSize, logger)
	queue.Start(context.Background())

	scheduler := jobs.NewScheduler(db, cfg.InactivityPeriod, logger)
	if err := scheduler.Start(cfg.DeactivateSchedule); err != nil {
		queue.Stop()
		return fmt.Errorf("schedule deactivation: %w", err)
	}

	rates := services.NewRatesService(cfg.CurrencyAPIURL, cfg.CurrencyAPIKey, cfg.DomesticCurrency, cfg.HTTPClientTimeout, logger)
	checkout := services.NewStripeCheckout(cfg.StripeAPIURL, cfg.StripeAPIKey, cfg.PaymentSuccessURL, cfg.HTTPClientTimeout)

	app := routes.NewApp(routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Logger:   logger,
		Tokens:   services.NewTokenStore(rdb),
		Payments: services.NewPaymentService(db, rates, checkout, logger),
		Queue:    queue,
		Mailer:   mailer,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = app.ShutdownWithContext(shutdownCtx)
	}

	scheduler.Stop()
	queue.Stop()
	return err
}

func createModerator(cCtx *cli.Context) error {
	_, db, _, err := bootstrap()
	if err != nil {
		return err
	}
	user, err := commands.CreateModerator(cCtx.Context, db, cCtx.String("email"), cCtx.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "Moderator %s (id %d) is ready\n", user.Email, user.ID)
	return nil
}

func seedPayments(cCtx *cli.Context) error {
	_, db, _, err := bootstrap()
	if err != nil {
		return err
	}
	n, err := commands.SeedPayments(cCtx.Context, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "Added %d payments\n", n)
	return nil
}

func deactivateInactive(cCtx *cli.Context) error {
	cfg, db, _, err := bootstrap()
	if err != nil {
		return err
	}
	n, err := jobs.DeactivateInactiveUsers(cCtx.Context, db, time.Now(), cfg.InactivityPeriod)
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "Deactivated %d users\n", n)
	return nil
}
