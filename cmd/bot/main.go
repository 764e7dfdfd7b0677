package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iyaskobsp/shift-booking-bot/internal/config"
	"github.com/iyaskobsp/shift-booking-bot/pkg/bot"
	"github.com/iyaskobsp/shift-booking-bot/pkg/clients/sheetsclient"
	"github.com/iyaskobsp/shift-booking-bot/pkg/clients/telegramclient"
	"github.com/iyaskobsp/shift-booking-bot/pkg/core/booking"
	"github.com/iyaskobsp/shift-booking-bot/pkg/core/notify"
	"github.com/iyaskobsp/shift-booking-bot/pkg/core/registry"
	"github.com/iyaskobsp/shift-booking-bot/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg        *config.Config
	sheets     *sheetsclient.Client
	telegram   *telegramclient.Client
	registry   *registry.Registry
	engine     *booking.Engine
	dispatcher *notify.Dispatcher
	logger     *zap.Logger
	ctx        context.Context
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftbot",
		Short: "Shift booking bot - coordinate shift bookings over Telegram",
		Long: `A Telegram bot that lets workers book open shifts from a shared
Google Sheets schedule and routes each booking to the responsible approver
for confirmation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: shiftbot.yaml in current or home directory)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(shiftsCmd())
	rootCmd.AddCommand(pingCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, and the booking engine
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application")

	// Load configuration
	app.logger.Info("Loading configuration")
	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Initialize sheets client
	app.logger.Info("Initializing sheets client",
		zap.String("spreadsheet_id", app.cfg.SpreadsheetID))
	app.sheets, err = sheetsclient.NewClient(app.ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.logger.Debug("Sheets client initialized successfully")

	// Initialize telegram client
	app.logger.Info("Initializing telegram client")
	app.telegram, err = telegramclient.NewClient(app.cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}
	app.logger.Debug("Telegram client initialized successfully",
		zap.String("username", app.telegram.Username()))

	// Wire the core
	app.registry = registry.New(app.sheets, app.sheets, app.logger)
	app.engine = booking.NewEngine(app.sheets, app.logger)
	app.dispatcher = notify.NewDispatcher(app.telegram, app.registry, app.logger)

	return nil
}

// Command definitions

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot and handle bookings until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b := bot.New(
				app.telegram,
				app.engine,
				app.registry,
				app.dispatcher,
				app.cfg.HorizonDays,
				app.logger,
			)

			updates := app.telegram.Updates()
			go func() {
				<-ctx.Done()
				app.telegram.StopPolling()
			}()

			app.logger.Info("Bot is running (polling)",
				zap.String("username", app.telegram.Username()),
				zap.Int("horizon_days", app.cfg.HorizonDays))
			fmt.Printf("Bot @%s is running (polling). Press Ctrl+C to stop.\n", app.telegram.Username())

			b.Run(ctx, updates)

			app.logger.Info("Bot stopped")
			return nil
		},
	}
}

func shiftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shifts",
		Short: "List shifts currently open for booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shifts, err := app.registry.ListOpenShifts(app.ctx, time.Now(), app.cfg.HorizonDays)
			if err != nil {
				return fmt.Errorf("failed to list open shifts: %w", err)
			}

			if len(shifts) == 0 {
				fmt.Println("No shifts open for booking.")
				return nil
			}

			fmt.Printf("\nFound %d open shifts:\n\n", len(shifts))
			for _, shift := range shifts {
				fmt.Printf("- row %d: %s on %s, %s-%s (need %s)\n",
					shift.RowIndex,
					shift.Location,
					shift.Date,
					shift.TimeFrom,
					shift.TimeTo,
					shift.RequiredCount,
				)
			}

			return nil
		},
	}
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verify the spreadsheet is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sheets.Probe(app.ctx); err != nil {
				return err
			}

			fmt.Println("✓ Spreadsheet reachable")
			return nil
		},
	}
}
