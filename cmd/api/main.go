//	@title			Stillwater Lodge API
//	@version		1.0
//	@description	Upload grants and media registry for the Stillwater Lodge site.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						x-api-key
//	@description				Shared upload secret.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/stillwater/lodge/internal/config"
	"github.com/stillwater/lodge/internal/db"
	"github.com/stillwater/lodge/internal/identity"
	"github.com/stillwater/lodge/internal/media"
	"github.com/stillwater/lodge/internal/server"
	"github.com/stillwater/lodge/internal/storage"
	"github.com/stillwater/lodge/internal/upload"

	_ "github.com/stillwater/lodge/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	signer, err := newSigner(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "object storage init failed", err)
	}

	repo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "media registry init failed", err)
	}
	defer closeRepo()

	var verifier identity.Verifier
	if cfg.IdentityEnabled() {
		v, err := identity.NewJWKSVerifier(ctx, cfg.OIDCJWKSURL, cfg.OIDCIssuer, cfg.OIDCAudience, logger)
		if err != nil {
			fatal(logger, "identity init failed", err)
		}
		verifier = v
	}

	// Wire dependencies: repository → service → handler
	uploadSvc := upload.NewService(signer, cfg.UploadTTL, nil)
	uploadHandler := upload.NewHandler(uploadSvc, logger)

	mediaSvc := media.NewService(repo, cfg.RegistryCacheSize, cfg.RegistryCacheTTL)
	mediaHandler := media.NewHandler(mediaSvc, logger)

	router := server.NewRouter(server.Deps{
		Logger:   logger,
		Upload:   uploadHandler,
		Media:    mediaHandler,
		APIKey:   cfg.UploadAPIKey,
		Verifier: verifier,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.AppEnv),
			slog.String("storage", cfg.StorageDriver),
			slog.String("registry", cfg.RegistryDriver),
			slog.Bool("identity", verifier != nil),
		)
		logger.Info(fmt.Sprintf("swagger UI at http://localhost:%s/swagger/", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal(logger, "forced shutdown", err)
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

func newSigner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Signer, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		s, err := storage.NewS3Signer(ctx, storage.S3Options{
			Endpoint:   cfg.StorageEndpoint,
			Region:     cfg.StorageRegion,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := storage.NewMinioSigner(storage.MinioOptions{
			Endpoint:   cfg.StorageEndpoint,
			Region:     cfg.StorageRegion,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx, logger); err != nil {
			return nil, err
		}
		return s, nil
	}
}

func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (media.Repository, func(), error) {
	switch cfg.RegistryDriver {
	case config.RegistryMemory:
		logger.Warn("media registry is in memory; records are lost on restart")
		return media.NewMemoryRepository(), func() {}, nil

	case config.RegistryDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.StorageRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		})
		return media.NewDynamoRepository(client, cfg.RegistryTable, cfg.RegistryFolderIndex), func() {}, nil

	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return media.NewPostgresRepository(pool), pool.Close, nil
	}
}
