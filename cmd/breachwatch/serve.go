package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/breachwatch/breachwatch/internal/api"
	"github.com/breachwatch/breachwatch/internal/config"
	"github.com/breachwatch/breachwatch/internal/invite"
	"github.com/breachwatch/breachwatch/internal/mail"
	"github.com/breachwatch/breachwatch/internal/metrics"
	"github.com/breachwatch/breachwatch/internal/org"
	"github.com/breachwatch/breachwatch/internal/ratelimit"
	"github.com/breachwatch/breachwatch/internal/report"
	"github.com/breachwatch/breachwatch/internal/status"
	"github.com/breachwatch/breachwatch/internal/token"
	"github.com/breachwatch/breachwatch/internal/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BreachWatch server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	userStore := user.NewStore(pool)
	orgStore := org.NewStore(pool)
	reportStore := report.NewStore(pool)

	var mailer mail.Mailer = mail.Disabled{}
	if cfg.Mail.Enabled {
		mailer = mail.NewSendgridMailer(cfg.Mail.SendgridAPIKey, cfg.Mail.From, cfg.Invite.OrgName)
		slog.Info("outbound mail enabled", "from", cfg.Mail.From)
	} else {
		slog.Info("outbound mail disabled, invitations recorded locally")
	}

	signer := token.NewSigner(cfg.Invite.TokenSecret, cfg.Invite.Domain+"|invite", cfg.Invite.TokenTTL)
	issuer := invite.NewIssuer(userStore, mailer, cfg.Invite.OrgName)
	links := invite.NewLinkBuilder(signer, cfg.Invite.Domain, cfg.Invite.OrgName, cfg.SSO.Enabled && cfg.SSO.Only)

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (total, idle, acquired int32) {
		st := pool.Stat()
		return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
	})

	recorder := report.NewAggregator(userStore, orgStore, reportStore)
	recorder.OnUpsert = m.IncReportUpsert

	summarizer := status.NewSummarizer(userStore, orgStore, reportStore)

	limiter := ratelimit.New(cfg.RateLimit.Default, cfg.RateLimit.Window)

	router := api.NewRouter(api.RouterDeps{
		Users:          userStore,
		Issuer:         issuer,
		Links:          links,
		Summarizer:     summarizer,
		Recorder:       recorder,
		Metrics:        m,
		Limiter:        limiter,
		DB:             pool,
		AdminToken:     cfg.Auth.AdminToken,
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
