package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/practicelabs/interview-partner/internal/ai/gemini"
	"github.com/practicelabs/interview-partner/internal/interview"
	"github.com/practicelabs/interview-partner/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "interview-partner"

	defaultListen = ":8000"
)

type Config struct {
	Listen        string    `mapstructure:"listen"`
	TemplatesFile string    `mapstructure:"templates-file"`
	AI            *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Provider string `mapstructure:"provider"`
	// Followups switches SHORT_ANSWER turns from the canned follow-up
	// message to delegate-generated probing questions.
	Followups bool          `mapstructure:"followups"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-partner conducts scripted mock interviews and scores the answers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gemini-api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini-api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-partner.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the serve and practice commands.
	if serveCmd.CalledAs() == "" && practiceCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The API key can come from the environment, so a missing config
		// file is fine. A broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Listen == "" {
		config.Listen = defaultListen
	}

	return config, nil
}

// newGenerator builds the Gemini-backed text generation delegate shared by
// the classifier, the follow-up generator and the report evaluator.
func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (*gemini.Generator, error) {
	var cfg GeminiConfig
	provider := ""

	if config.AI != nil {
		provider = strings.TrimSpace(strings.ToLower(config.AI.Provider))
		if config.AI.Gemini != nil {
			cfg = *config.AI.Gemini
		}
	}

	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = viper.GetString("gemini-api-key")
	}
	if cfg.APIKeyFile == "" {
		cfg.APIKeyFile = viper.GetString("gemini-api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY or ai.gemini.api-key-file)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Model),
	)

	return gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
}

func loadTemplates(config *Config) (*interview.Templates, error) {
	if config.TemplatesFile == "" {
		return interview.DefaultTemplates(), nil
	}
	return interview.LoadTemplates(config.TemplatesFile)
}
