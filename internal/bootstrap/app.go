package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-api/internal/archive"
	tokenauth "docextract-api/internal/auth"
	"docextract-api/internal/documents"
	"docextract-api/internal/llm"
	"docextract-api/internal/llm/grok"
	"docextract-api/internal/llm/openai"
	"docextract-api/internal/services/health"
	"docextract-api/internal/shared/auth"
	"docextract-api/internal/shared/config"
	"docextract-api/internal/shared/server"
	localstore "docextract-api/internal/shared/storage/object/local"
	s3store "docextract-api/internal/shared/storage/object/s3"
	"docextract-api/internal/shared/telemetry"
)

const defaultRegion = "us-east-1"

// App holds shared dependencies and the routed engine.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	Authority        *auth.Authority
	Selector         *llm.Selector
	Archiver         archive.Archiver
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	TokenHandler     *tokenauth.Handler
}

// Build wires every component from cfg and mounts the routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	authority, err := auth.NewAuthority(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.ServiceID)
	if err != nil {
		return nil, err
	}

	archiver, filesDir, err := buildArchiver(ctx, cfg)
	if err != nil {
		return nil, err
	}

	converter, err := documents.NewConverter()
	if err != nil {
		return nil, fmt.Errorf("build converter: %w", err)
	}

	selector := buildSelector(cfg)
	fetcher := documents.NewFetcher(nil, cfg.FileFetchTimeout, cfg.MaxUploadBytes)
	docSvc := documents.NewService(selector, archiver, fetcher, converter, cfg.ArchiveBackend).
		WithDefaultTenant(cfg.DefaultTenant)

	app := &App{
		Config:           cfg,
		Authority:        authority,
		Selector:         selector,
		Archiver:         archiver,
		DocumentsService: docSvc,
		DocumentsHandler: documents.NewHandler(docSvc, cfg.MaxUploadBytes),
		TokenHandler:     tokenauth.NewHandler(authority),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        authority,
		TokenHandler:    app.TokenHandler,
		DocumentHandler: app.DocumentsHandler,
		Health:          health.NewService(cfg.ArchiveBackend, configuredProviders(cfg)...),
		FilesDir:        filesDir,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":             cfg.Env,
		"archive_backend": cfg.ArchiveBackend,
		"api_prefix":      cfg.APIPrefix,
	})
	return app, nil
}

func buildSelector(cfg config.Config) *llm.Selector {
	return llm.NewSelector(
		llm.Binding{
			Provider: llm.ProviderOpenAI,
			Config: llm.ProviderConfig{
				APIKey:  cfg.OpenAIKey,
				Model:   cfg.OpenAIModel,
				BaseURL: cfg.OpenAIBaseURL,
				Timeout: cfg.ProviderTimeout,
			},
			New: openai.New,
		},
		llm.Binding{
			Provider: llm.ProviderGrok,
			Config: llm.ProviderConfig{
				APIKey:  cfg.GrokKey,
				Model:   cfg.GrokModel,
				BaseURL: cfg.GrokBaseURL,
				Timeout: cfg.ProviderTimeout,
			},
			New: grok.New,
		},
	)
}

func configuredProviders(cfg config.Config) []string {
	var out []string
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		out = append(out, llm.ProviderOpenAI.String())
	}
	if strings.TrimSpace(cfg.GrokKey) != "" {
		out = append(out, llm.ProviderGrok.String())
	}
	return out
}

// buildArchiver returns the archiver for the configured backend and, for the
// local backend, the directory to serve under /files.
func buildArchiver(ctx context.Context, cfg config.Config) (archive.Archiver, string, error) {
	switch cfg.ArchiveBackend {
	case "s3":
		region := strings.TrimSpace(cfg.AWSRegion)
		if region == "" {
			region = defaultRegion
		}
		store, err := s3store.New(ctx, s3store.Options{
			Region:          region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			KMSKeyID:        cfg.SSEKMSKeyID,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return archive.NewObjectArchiver(store), "", nil
	case "local":
		store := localstore.New(cfg.LocalStoreDir, cfg.LocalPublicBase)
		return archive.NewObjectArchiver(store), store.Dir(), nil
	default:
		return archive.NewHTTPClient(archive.HTTPConfig{
			BaseURL:    cfg.ArchiveBaseURL,
			AuthToken:  cfg.ArchiveAuthToken,
			RequestID:  cfg.ArchiveRequestID,
			AppID:      cfg.ArchiveAppID,
			DeviceID:   cfg.ArchiveDeviceID,
			BusinessID: cfg.ArchiveBusinessID,
			Timeout:    cfg.ArchiveTimeout,
		}, &http.Client{}), "", nil
	}
}
