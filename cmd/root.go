package cmd

import (
	"context"
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ateneai/wa-relay/core/config"
	"github.com/ateneai/wa-relay/core/database"
	domainDispatch "github.com/ateneai/wa-relay/domains/dispatch"
	domainHealth "github.com/ateneai/wa-relay/domains/health"
	domainRegistry "github.com/ateneai/wa-relay/domains/registry"
	domainSend "github.com/ateneai/wa-relay/domains/send"
	"github.com/ateneai/wa-relay/idempotency"
	"github.com/ateneai/wa-relay/infrastructure/forwarder"
	"github.com/ateneai/wa-relay/infrastructure/twilio"
	infraValkey "github.com/ateneai/wa-relay/infrastructure/valkey"
	"github.com/ateneai/wa-relay/pkg/msgworker"
	"github.com/ateneai/wa-relay/pkg/utils"
	"github.com/ateneai/wa-relay/registry/repository"
	"github.com/ateneai/wa-relay/usecase"
	"github.com/ateneai/wa-relay/workspace"
	workspaceDomain "github.com/ateneai/wa-relay/workspace/domain"
)

var (
	// Usecase
	dispatchUsecase domainDispatch.IDispatchUsecase
	sendUsecase     domainSend.ISendUsecase
	registryUsecase domainRegistry.IRegistryUsecase
	healthUsecase   domainHealth.IHealthUsecase

	// Infrastructure
	workspaceResolver *workspace.Resolver
	dedupeStore       idempotency.Store
	dedupeBackend     string
	valkeyClient      *infraValkey.Client
	dispatchPool      *msgworker.Pool
	poolCancel        context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "wa-relay",
	Short: "Multi-tenant WhatsApp webhook relay",
	Long: `wa-relay routes WhatsApp messages between a provider account shared by
several workspaces and the per-tenant automation webhooks behind it.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP("port", "p", "",
		"change port number with --port <number> | example: --port=8080")
	rootCmd.PersistentFlags().BoolP("debug", "d", false,
		"hide or displaying log with --debug <true/false> | example: --debug=true")
	rootCmd.PersistentFlags().StringSliceP("basic-auth", "b", nil,
		"basic auth credential | -b=yourUsername:yourPassword")
	rootCmd.PersistentFlags().String("base-path", "",
		`base path for subpath deployment --base-path <string> | example: --base-path="/relay"`)
	rootCmd.PersistentFlags().Int("dispatch-workers", 0,
		"relay inbound messages through N workers --dispatch-workers <number> | example: --dispatch-workers=6")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	viper.AutomaticEnv()
}

// initEnvConfig builds the typed configuration and applies flag overrides.
func initEnvConfig() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	if port := viper.GetString("port"); port != "" {
		cfg.App.Port = port
	}
	if viper.GetBool("debug") {
		cfg.App.Debug = true
	}
	if basicAuth := viper.GetStringSlice("basic-auth"); len(basicAuth) > 0 {
		cfg.Security.BasicAuth = basicAuth
	}
	if basePath := viper.GetString("base-path"); basePath != "" {
		cfg.App.BasePath = basePath
	}
	if workers := viper.GetInt("dispatch-workers"); workers > 0 {
		cfg.Dispatch.Workers = workers
	}
}

func initApp() {
	cfg := config.Global

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()

	// Workspace routing table
	configs := make([]workspaceDomain.Config, 0, len(cfg.Workspaces.Entries))
	for _, entry := range cfg.Workspaces.Entries {
		configs = append(configs, workspaceDomain.Config{
			ID:                   entry.ID,
			DisplayName:          entry.Name,
			ReceivingNumber:      entry.ReceivingNumber,
			SenderOverrideNumber: entry.SenderNumber,
			OutboundSenderPoolID: entry.SenderPoolID,
		})
	}
	var err error
	workspaceResolver, err = workspace.NewResolver(configs)
	if err != nil {
		logrus.Fatalf("[WORKSPACE] %v", err)
	}
	logrus.Infof("[WORKSPACE] %d workspace(s) enrolled", len(configs))

	// Idempotency store
	dedupeBackend = "memory"
	dedupeStore = idempotency.NewMemoryStore(cfg.Dedupe.MaxEntries)
	if cfg.Database.ValkeyEnabled {
		valkeyClient, err = infraValkey.NewClient(infraValkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Fatalf("[VALKEY] %v", err)
		}
		dedupeStore = idempotency.NewValkeyStore(valkeyClient)
		dedupeBackend = "valkey"
	}

	// Webhook registry
	var registryRepo domainRegistry.Repository = repository.NewMemoryRepository()
	if cfg.Database.Driver != "" {
		db, err := database.NewDatabase(cfg)
		if err != nil {
			logrus.Fatalf("[DATABASE] %v", err)
		}
		gormRepo, err := repository.NewGormRepository(db)
		if err != nil {
			logrus.Fatalf("[DATABASE] registry migration: %v", err)
		}
		registryRepo = gormRepo
		logrus.Infof("[DATABASE] Registry persisted via %s", cfg.Database.Driver)
	}
	if err := usecase.Seed(ctx, registryRepo, cfg.Webhooks); err != nil {
		logrus.Fatalf("[REGISTRY] seed: %v", err)
	}
	registryUsecase = usecase.NewRegistryService(registryRepo)

	// Outbound provider
	providerClient := twilio.NewClient(cfg.Provider.AccountSID, cfg.Provider.AuthToken, cfg.Provider.BaseURL)

	// Dispatch pipeline
	forwardOpts := []forwarder.Option{}
	if cfg.Forward.Secret != "" {
		forwardOpts = append(forwardOpts, forwarder.WithSecret(cfg.Forward.Secret))
	}
	dispatchUsecase = usecase.NewDispatchService(
		workspaceResolver,
		registryUsecase,
		forwarder.NewHTTPForwarder(cfg.Forward.Timeout, forwardOpts...),
		dedupeStore,
		cfg.Dedupe.TTL,
	)

	if cfg.Dispatch.Workers > 0 {
		var poolCtx context.Context
		poolCtx, poolCancel = context.WithCancel(context.Background())
		dispatchPool = msgworker.NewPool(cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)
		dispatchPool.Start(poolCtx)
	}

	sendUsecase = usecase.NewSendService(
		providerClient,
		workspaceResolver,
		dedupeStore,
		cfg.Dedupe.TTL,
		cfg.Workspaces.Restrict,
		usecase.SenderDefaults{
			PoolSID: cfg.Provider.DefaultPoolSID,
			Number:  cfg.Provider.DefaultNumber,
		},
	)

	probe := usecase.AccountProbe(nil)
	if cfg.Provider.AccountSID != "" {
		probe = func(ctx context.Context) (string, string, error) {
			info, err := providerClient.AccountInfo(ctx)
			return info.FriendlyName, info.Status, err
		}
	}
	healthUsecase = usecase.NewHealthService(
		probe,
		registryUsecase,
		workspaceResolver,
		dedupeStore,
		dedupeBackend,
		dispatchPool,
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the relay subsystems.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if dispatchPool != nil {
		if poolCancel != nil {
			poolCancel()
		}
		dispatchPool.Stop()
	}
	if dedupeStore != nil {
		dedupeStore.Close()
	}
	if valkeyClient != nil {
		valkeyClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
