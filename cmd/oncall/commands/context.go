package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"whoseonfirst/internal/app"
	"whoseonfirst/internal/domain/transport"
	"whoseonfirst/internal/infra/config"
	idb "whoseonfirst/internal/infra/database"
	"whoseonfirst/internal/infra/logger"
	"whoseonfirst/internal/infra/sms"
	"whoseonfirst/internal/infra/telegram"
)

// AppContext holds the application dependencies shared by all commands.
type AppContext struct {
	Ctx    context.Context
	Cfg    *config.AppConfig
	Logger *logrus.Logger
	DB     *sql.DB

	Members     *idb.PostgresMemberRepository
	Assignments *idb.PostgresAssignmentRepository
	Overrides   *idb.PostgresOverrideRepository
	Attempts    *idb.PostgresAttemptRepository

	Schedule  *app.ScheduleService
	Override  *app.OverrideService
	Dispatch  *app.DispatchService
	Transport transport.Client
}

// New returns an empty context; Init wires it before any command runs.
func New() *AppContext {
	return &AppContext{}
}

// Init loads configuration and wires repositories, transport and
// services into the receiver. The caller owns Close.
func (a *AppContext) Init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"time_zone":   cfg.TimeZone,
		"transport":   cfg.Transport,
	}).Info("Configuration loaded")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}

	a.Ctx = ctx
	a.Cfg = cfg
	a.Logger = log
	a.DB = db
	a.Members = idb.NewPostgresMemberRepository(db)
	a.Assignments = idb.NewPostgresAssignmentRepository(db)
	a.Overrides = idb.NewPostgresOverrideRepository(db)
	a.Attempts = idb.NewPostgresAttemptRepository(db)

	switch cfg.Transport {
	case "twilio":
		a.Transport = sms.NewTwilioAdapter(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	case "telegram":
		bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
		if err != nil {
			db.Close()
			return fmt.Errorf("could not create telegram transport: %w", err)
		}
		a.Transport = telegram.NewTelebotAdapter(bot)
	default:
		a.Transport = sms.NewMockAdapter(log)
	}

	a.Schedule = app.NewScheduleService(
		a.Assignments, a.Members, a.Overrides, a.Attempts,
		log, cfg.Location(), cfg.AutoRenewThresholdWeeks, cfg.AutoRenewCycles,
	)
	a.Override = app.NewOverrideService(a.Overrides, a.Assignments, a.Members, log)
	a.Dispatch = app.NewDispatchService(
		a.Transport, a.Attempts, a.Assignments, a.Members, a.Override, log,
		app.RetryPolicy{
			MaxAttempts: cfg.MaxSendAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    app.DefaultRetryPolicy().MaxDelay,
		},
		cfg.MaxInFlight,
		cfg.EscalationContacts,
	)

	log.Info("Application context initialized")
	return nil
}

func (a *AppContext) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
