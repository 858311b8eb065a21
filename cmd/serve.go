package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/practicelabs/interview-partner/internal/interview"
	"github.com/practicelabs/interview-partner/internal/logger"
	"github.com/practicelabs/interview-partner/internal/report"
	"github.com/practicelabs/interview-partner/internal/server"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview practice partner HTTP server",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultListen, "address to listen on")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	// A missing .env file is fine, the environment may carry the key already.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview-partner", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	core, err := buildCore(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interview core", zap.Error(err))
	}

	srv, err := server.New(core.agent, core.store, core.aggregator, logger)
	if err != nil {
		logger.Fatal("building the http server", zap.Error(err))
	}

	go func() {
		logger.Info("listening", zap.String("address", config.Listen))
		if err := srv.Start(config.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "signal received"))
}

// core bundles the wired interview components shared by the serve and
// practice commands.
type core struct {
	agent      *interview.Agent
	store      interview.Store
	aggregator *report.Aggregator
	templates  *interview.Templates
}

func buildCore(ctx context.Context, config *Config, logger *zap.Logger) (*core, error) {
	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("building the gemini generator: %w", err)
	}

	templates, err := loadTemplates(config)
	if err != nil {
		return nil, fmt.Errorf("loading question templates: %w", err)
	}

	logger.Info("question templates loaded", zap.Strings("roles", templates.Roles()))

	store := interview.NewMemoryStore()
	classifier := interview.NewClassifier(generator, logger)

	opts := []interview.AgentOption{}
	if config.AI != nil && config.AI.Followups {
		opts = append(opts, interview.WithFollowupGenerator(interview.NewFollowupGenerator(generator, logger)))
	}

	return &core{
		agent:      interview.NewAgent(store, templates, classifier, logger, opts...),
		store:      store,
		aggregator: report.NewAggregator(generator, logger),
		templates:  templates,
	}, nil
}
