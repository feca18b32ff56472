package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"eventmanager/config"
	"eventmanager/internal/adapters/amqp"
	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/adapters/email"
	"eventmanager/internal/adapters/qrcode"
	"eventmanager/internal/adapters/realtime"
	"eventmanager/internal/adapters/token"
	deliveryhttp "eventmanager/internal/delivery/http"
	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
	"eventmanager/internal/repository/postgres"
	"eventmanager/internal/services"
)

// app is the wired application: the HTTP handler plus the background workers and
// resources that must be released on shutdown.
type app struct {
	handler  http.Handler
	listener *realtime.PGListener
	closers  []func() error
}

// Run starts background workers. It returns when ctx is done.
func (a *app) Run(ctx context.Context) error {
	if a.listener == nil {
		<-ctx.Done()
		return nil
	}
	return a.listener.Run(ctx)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// changeBus carries participant changes from services to subscribers.
type changeBus struct {
	notifier domain.ChangeNotifier
	hub      *realtime.Hub
	listener *realtime.PGListener
	closers  []func() error
}

// newChangeBus builds the notifier services publish to and the hub the websocket
// stream subscribes to.
func newChangeBus(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*changeBus, error) {
	bus := &changeBus{hub: realtime.NewHub()}
	var fanout realtime.Fanout

	switch cfg.Realtime.Backend {
	case "postgres":
		// Changes reach the local hub through LISTEN, including our own.
		fanout = append(fanout, realtime.NewPGNotifier(db, cfg.Realtime.Channel))
		l, err := realtime.NewPGListener(cfg.DBUrl, cfg.Realtime.Channel, bus.hub, logger)
		if err != nil {
			return nil, err
		}
		bus.listener = l
	default:
		fanout = append(fanout, bus.hub)
	}

	if cfg.Realtime.AMQPURL != "" {
		pub, err := amqp.Dial(cfg.Realtime.AMQPURL, cfg.Realtime.AMQPExchange)
		if err != nil {
			return nil, err
		}
		bus.closers = append(bus.closers, pub.Close)
		fanout = append(fanout, pub)
		logger.Info("publishing participant changes to amqp", "exchange", cfg.Realtime.AMQPExchange)
	}
	bus.notifier = fanout
	return bus, nil
}

// newEmailService returns nil when no delivery credential is configured, which the
// invitation service reports as MISSING_API_KEY.
func newEmailService(cfg *config.Config, logger *slog.Logger) (domain.EmailService, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		Resend: email.ResendConfig{
			APIKey:  cfg.Email.ResendAPIKey,
			BaseURL: cfg.Email.ResendBaseURL,
		},
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipTLS,
			Endpoint:           cfg.Email.SESEndpoint,
		},
	}, logger)
	if errors.Is(err, domain.ErrMissingAPIKey) {
		logger.Warn("RESEND_API_KEY is not set; invitation emails are disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}
	return services.NewEmailService(mailer, email.NewTemplateRenderer(), logger), nil
}

func newApp(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*app, error) {
	bus, err := newChangeBus(cfg, db, logger)
	if err != nil {
		return nil, err
	}
	notifier := bus.notifier
	emailService, err := newEmailService(cfg, logger)
	if err != nil {
		return nil, err
	}

	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	qr := qrcode.NewEncoder(cfg.QRCodeSize)

	profileService := services.NewProfileService(profileRepo, cfg.RequestTimeout)
	eventService := services.NewEventService(eventRepo, participantRepo, profileService, cfg.RequestTimeout)
	participantService := services.NewParticipantService(eventRepo, participantRepo, token.NewGenerator(), qr,
		notifier, bus.hub, cfg.PublicBaseURL, logger, cfg.RequestTimeout)
	invitationService := services.NewInvitationService(eventRepo, participantRepo, profileRepo, emailService,
		notifier, cfg.PublicBaseURL, logger, cfg.InvitationTimeout)
	attendeeService := services.NewAttendeeService(eventRepo, participantRepo, qr, notifier, cfg.PublicBaseURL, logger, cfg.RequestTimeout)
	checkInService := services.NewCheckInService(eventRepo, participantRepo, notifier, logger, cfg.RequestTimeout)

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Health:      &controllers.HealthController{DB: db},
		Profile:     controllers.NewProfileController(logger, profileService),
		Event:       controllers.NewEventController(logger, eventService),
		Participant: controllers.NewParticipantController(logger, participantService),
		Stream:      controllers.NewStreamController(logger, participantService),
		Invitation:  controllers.NewInvitationController(logger, invitationService),
		Attendee:    controllers.NewAttendeeController(logger, attendeeService, checkInService),
		CheckIn:     controllers.NewCheckInController(logger, checkInService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))
	return &app{handler: handler, listener: bus.listener, closers: bus.closers}, nil
}
