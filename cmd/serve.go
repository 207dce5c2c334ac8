package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xzayogn/jobchat/internal/aggregator"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/memory"
	"github.com/xzayogn/jobchat/internal/provider"
	"github.com/xzayogn/jobchat/internal/provider/careerjet"
	"github.com/xzayogn/jobchat/internal/provider/duckduckgo"
	"github.com/xzayogn/jobchat/internal/provider/jooble"
	"github.com/xzayogn/jobchat/internal/provider/web3career"
	"github.com/xzayogn/jobchat/internal/query"
	"github.com/xzayogn/jobchat/internal/secrets"
	"github.com/xzayogn/jobchat/internal/server"
	"github.com/xzayogn/jobchat/internal/textanalysis"
	"github.com/xzayogn/jobchat/internal/textanalysis/gemini"
	"github.com/xzayogn/jobchat/internal/workflow"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultPort              = 8080
	defaultProviderTimeout   = 10 * time.Second
	defaultRequestsPerSecond = 2.0
	defaultBurst             = 4
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jobchat HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on, overrides the config file")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		zl.Fatal("config is required")
	}

	zl.Info("starting the jobchat api", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zl.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	wf, err := buildWorkflow(ctx, config, zl)
	if err != nil {
		zl.Fatal("building the search workflow", zap.Error(err))
	}

	port := defaultPort
	var origins []string
	if config.Server != nil {
		if config.Server.Port > 0 {
			port = config.Server.Port
		}
		origins = config.Server.AllowedOrigins
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	srv := server.New(server.Config{
		Port:           port,
		AllowedOrigins: origins,
	}, wf, memory.NewStore(), zl)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		zl.Info("shutting down")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		zl.Fatal("api server exited", zap.Error(err))
	}
}

// buildWorkflow wires the classifier, the providers and the aggregator
// into one workflow. Providers with missing credentials are skipped with
// a warning instead of failing startup.
func buildWorkflow(ctx context.Context, config *Config, zl *zap.Logger) (*workflow.Workflow, error) {
	search := config.Search
	if search == nil {
		search = &SearchConfig{}
	}

	timeout := defaultProviderTimeout
	if search.ProviderTimeoutSeconds > 0 {
		timeout = time.Duration(search.ProviderTimeoutSeconds) * time.Second
	}

	reqPerSec := search.RequestsPerSecond
	if reqPerSec <= 0 {
		reqPerSec = defaultRequestsPerSecond
	}
	burst := search.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	limiter := provider.NewHostLimiter(reqPerSec, burst)

	pageSize := search.PageSize
	if pageSize <= 0 {
		pageSize = aggregator.DefaultPageSize
	}

	providers := buildProviders(config.Providers, pageSize, limiter, zl)
	if len(providers) == 0 {
		zl.Warn("no job providers configured, only the web-search fallback will serve job queries")
	}

	web := duckduckgo.New(duckduckgo.Config{}, limiter, zl)

	analyzer := buildAnalyzer(ctx, config.AI, zl)
	classifier := query.NewClassifier(analyzer, zl)

	agg := aggregator.New(providers, timeout, zl)

	return workflow.New(classifier, agg, web, search.MaxSources, zl), nil
}

func buildProviders(cfg *ProvidersConfig, pageSize int, limiter *provider.HostLimiter, zl *zap.Logger) []provider.Client {
	if cfg == nil {
		return nil
	}

	var providers []provider.Client

	if cfg.Jooble != nil {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "jooble api key",
			Value: cfg.Jooble.APIKey,
			File:  cfg.Jooble.APIKeyFile,
		})
		if err != nil {
			zl.Warn("skipping jooble provider", zap.Error(err))
		} else {
			providers = append(providers, jooble.New(jooble.Config{
				APIKey:   apiKey,
				BaseURL:  cfg.Jooble.BaseURL,
				PageSize: pageSize,
			}, limiter, zl))
		}
	}

	if cfg.Careerjet != nil {
		affID, err := secrets.Load(secrets.Source{
			Name:  "careerjet affiliate id",
			Value: cfg.Careerjet.AffID,
			File:  cfg.Careerjet.AffIDFile,
		})
		if err != nil {
			zl.Warn("skipping careerjet provider", zap.Error(err))
		} else {
			providers = append(providers, careerjet.New(careerjet.Config{
				AffID:    affID,
				BaseURL:  cfg.Careerjet.BaseURL,
				Locale:   cfg.Careerjet.Locale,
				PageSize: pageSize,
			}, limiter, zl))
		}
	}

	if cfg.Web3Career != nil {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "web3career api key",
			Value: cfg.Web3Career.APIKey,
			File:  cfg.Web3Career.APIKeyFile,
		})
		if err != nil {
			zl.Warn("skipping web3career provider", zap.Error(err))
		} else {
			providers = append(providers, web3career.New(web3career.Config{
				APIKey:  apiKey,
				BaseURL: cfg.Web3Career.BaseURL,
			}, limiter, zl))
		}
	}

	return providers
}

// buildAnalyzer returns the gemini-backed analyzer when configured and
// falls back to the built-in heuristic one otherwise. Classification
// must keep working without the model.
func buildAnalyzer(ctx context.Context, cfg *AIConfig, zl *zap.Logger) textanalysis.Analyzer {
	if cfg == nil || !cfg.Enabled {
		return textanalysis.NewHeuristic()
	}

	analyzer, err := newGeminiAnalyzer(ctx, cfg, zl)
	if err != nil {
		zl.Warn("falling back to heuristic text analysis", zap.Error(err))
		return textanalysis.NewHeuristic()
	}

	return analyzer
}

func newGeminiAnalyzer(ctx context.Context, cfg *AIConfig, zl *zap.Logger) (textanalysis.Analyzer, error) {
	aiProvider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if aiProvider != "" && aiProvider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	analyzerLogger := zl.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	return gemini.NewAnalyzer(generator, cfg.Gemini.MaxRetries, cfg.Gemini.MaxLogLength, analyzerLogger), nil
}
