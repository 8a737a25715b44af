package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/cache"
	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/apiserver/handler"
	"github.com/dealerhub/dealerhub/internal/apiserver/middleware"
	"github.com/dealerhub/dealerhub/internal/apiserver/service"
	"github.com/dealerhub/dealerhub/internal/auth/jwt"
	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/dealerhub/dealerhub/internal/i18n"
	"github.com/dealerhub/dealerhub/internal/mail"
	"github.com/dealerhub/dealerhub/internal/notify"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"github.com/dealerhub/dealerhub/pkg/logger"
	"github.com/dealerhub/dealerhub/pkg/metrics"
	"github.com/dealerhub/dealerhub/pkg/trace"
	"github.com/dealerhub/dealerhub/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	saEmail    string
	saName     string
	saPassword string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := bootstrap()
			if err != nil {
				return err
			}
			defer lg.Sync()
			db, err := initDatabase(cmd.Context(), lg, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			lg.Info("schema is up to date", zap.String("database", cfg.Database.Type))
			return nil
		},
	}

	superAdminCmd = &cobra.Command{
		Use:   "superadmin",
		Short: "Manage platform super admins",
	}

	superAdminCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a super admin unless one with the email exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := bootstrap()
			if err != nil {
				return err
			}
			defer lg.Sync()
			db, err := initDatabase(cmd.Context(), lg, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			created, err := ensureSuperAdmin(cmd.Context(), db, config.SuperAdminConfig{Email: saEmail, Name: saName, Password: saPassword})
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "super admin %s created\n", saEmail)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "super admin %s already exists\n", saEmail)
			}
			return nil
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "DealerHub API Server",
		Long:  `DealerHub API Server serves the multi-tenant dealership API`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "apiserver.yaml", "path to configuration file")

	superAdminCreateCmd.Flags().StringVar(&saEmail, "email", "", "login email")
	superAdminCreateCmd.Flags().StringVar(&saName, "name", "Super Admin", "display name")
	superAdminCreateCmd.Flags().StringVar(&saPassword, "password", "", "password, at least 8 characters")
	_ = superAdminCreateCmd.MarkFlagRequired("email")
	_ = superAdminCreateCmd.MarkFlagRequired("password")
	superAdminCmd.AddCommand(superAdminCreateCmd)

	rootCmd.AddCommand(versionCmd, migrateCmd, superAdminCmd)
}

func bootstrap() (*config.APIServerConfig, *zap.Logger, error) {
	cfg, path, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration %s: %w", path, err)
	}
	lg, err := initLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	lg.Info("configuration loaded", zap.String("path", path))
	return cfg, lg, nil
}

func initLogger(cfg *config.APIServerConfig) (*zap.Logger, error) {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return lg, nil
}

// initDatabase opens the configured database and migrates the schema
func initDatabase(ctx context.Context, lg *zap.Logger, cfg *config.DatabaseConfig) (*database.DB, error) {
	db, err := database.NewDatabase(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func ensureSuperAdmin(ctx context.Context, db *database.DB, sa config.SuperAdminConfig) (bool, error) {
	if sa.Email == "" || sa.Password == "" {
		return false, nil
	}
	if len(sa.Password) < 8 {
		return false, errors.New("super admin password must be at least 8 characters")
	}
	name := sa.Name
	if name == "" {
		name = "Super Admin"
	}
	hash, err := service.HashPassword(sa.Password)
	if err != nil {
		return false, err
	}
	return db.EnsureSuperAdmin(ctx, sa.Email, name, hash)
}

func run(ctx context.Context) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	defer lg.Sync()
	lg.Info("starting apiserver", zap.String("version", version.Get()))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := i18n.Init(cfg.I18n.DefaultLang, cfg.I18n.Path); err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	shutdownTracing, err := trace.InitTracing(ctx, cfg.Tracing, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := initDatabase(ctx, lg, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if created, err := ensureSuperAdmin(ctx, db, cfg.SuperAdmin); err != nil {
		return fmt.Errorf("failed to bootstrap super admin: %w", err)
	} else if created {
		lg.Info("bootstrap super admin created", zap.String("email", cfg.SuperAdmin.Email))
	}

	store, err := cache.New(cfg.Cache, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer store.Close()

	users, err := jwt.NewUserVerifier(cfg.JWT.UserSecret, cfg.JWT.Issuer)
	if err != nil {
		return err
	}
	admins, err := jwt.NewSuperAdminVerifier(cfg.JWT.SuperAdminSecret, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	var (
		m        *metrics.Metrics
		recorder service.Recorder
		notifRec notify.Recorder
	)
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
		recorder, notifRec = m, m
	}

	notifier, err := notify.New(mail.NewSender(cfg.Mail, lg), notify.Options{
		AdminRecipients: cfg.Mail.AdminRecipients,
		PublicURL:       cfg.Mail.PublicURL,
		Timeout:         cfg.Mail.Timeout,
		Recorder:        notifRec,
	}, lg)
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}

	resolver := tenant.NewResolver(db, store, cfg.Tenancy.CacheTTL, tenant.NewRules(cfg.Tenancy.ReservedSubdomains...), lg)
	provisioner := service.NewProvisioner(db, &cfg.Tenancy)
	sessions := service.NewSessions(db, users, admins, cfg.JWT, recorder, lg)
	regs := service.NewRegistrations(db, resolver, provisioner, notifier, recorder, lg)
	tenants := service.NewTenants(db, resolver, provisioner, sessions, lg)
	resets := service.NewPasswordResets(db, store, resolver, notifier, service.DefaultResetTTL, lg)

	gin.SetMode(cfg.Server.Mode)
	opts := handler.RouterOptions{
		Logger:         lg,
		Authenticator:  middleware.NewAuthenticator(db, users, admins, lg),
		Resolver:       resolver,
		TenantHeader:   cfg.Tenancy.Header,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Health:         handler.NewHealth(db, lg),
		Auth:           handler.NewAuth(sessions, resets),
		Registration:   handler.NewRegistration(regs),
		SuperAdmin:     handler.NewSuperAdmin(db, sessions, tenants, regs),
		Resources:      handler.NewResources(db, lg),
	}
	if cfg.Tracing.Enabled {
		opts.TraceService = cfg.Tracing.ServiceName
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           handler.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			lg.Error("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("failed to shutdown server", zap.Error(err))
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		lg.Warn("pending notifications dropped", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		lg.Warn("failed to flush traces", zap.Error(err))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
