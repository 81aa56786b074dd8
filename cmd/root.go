package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "scheme-navigator"
)

type Config struct {
	Catalog          string             `mapstructure:"catalog"`
	CatalogTokenFile string             `mapstructure:"catalog-token-file"`
	Session          SessionConfig      `mapstructure:"session"`
	Index            IndexConfig        `mapstructure:"index"`
	Server           ServerConfig       `mapstructure:"server"`
	AI               AIConfig           `mapstructure:"ai"`
	Conversation     ConversationConfig `mapstructure:"conversation"`
}

type SessionConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type IndexConfig struct {
	Path       string `mapstructure:"path"`
	Provider   string `mapstructure:"provider"`
	Dimensions int    `mapstructure:"dimensions"`
	CacheSize  int    `mapstructure:"cache-size"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type AIConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Provider          string        `mapstructure:"provider"`
	MinimumConfidence float64       `mapstructure:"minimum-confidence"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Gemini            GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

type ConversationConfig struct {
	MaxResults int `mapstructure:"max-results"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scheme-navigator helps people find the government welfare schemes they are eligible for",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("catalog", "data/schemes.json")
	viper.SetDefault("session.timeout", "30m")
	viper.SetDefault("index.provider", "hash")
	viper.SetDefault("index.dimensions", 256)
	viper.SetDefault("index.cache-size", 1024)
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.minimum-confidence", 0.6)
	viper.SetDefault("ai.timeout", "5s")
	viper.SetDefault("conversation.max-results", 3)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scheme-navigator.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog", "", "path or URL of the scheme catalog")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix("NAVIGATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so only an explicitly requested or unparsable file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
