package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talent-ranker"
)

type Config struct {
	DataDir   string           `mapstructure:"data-dir"`
	Server    *ServerConfig    `mapstructure:"server"`
	LinkedIn  *LinkedInConfig  `mapstructure:"linkedin"`
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	Recommend *RecommendConfig `mapstructure:"recommend"`
	Ledger    *LedgerConfig    `mapstructure:"ledger"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LinkedInConfig struct {
	Email        string `mapstructure:"email"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	UserAgent    string `mapstructure:"user-agent"`
	SearchLimit  int    `mapstructure:"search-limit"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
	BatchSize  int    `mapstructure:"batch-size"`
}

type RecommendConfig struct {
	SkillsFile         string `mapstructure:"skills-file"`
	CertificationsFile string `mapstructure:"certifications-file"`
	CandidatesFile     string `mapstructure:"candidates-file"`
}

type LedgerConfig struct {
	// Backend is either "file" or "redis".
	Backend string       `mapstructure:"backend"`
	File    string       `mapstructure:"file"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talent-ranker scrapes professional profiles, ranks contestants against references and recommends missing skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"linkedin.email":         "LINKEDIN_EMAIL",
		"linkedin.password":      "LINKEDIN_PASSWORD",
		"linkedin.password-file": "LINKEDIN_PASSWORD_FILE",
		"gemini.api-key":         "GEMINI_API_KEY",
		"gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"ledger.redis.addr":      "REDIS_ADDR",
		"ledger.redis.password":  "REDIS_PASSWORD",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("data-dir", ".")
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("gemini.max-retries", 3)
	viper.SetDefault("recommend.skills-file", "talents/skills_count.csv")
	viper.SetDefault("recommend.certifications-file", "talents/certifications_count.csv")
	viper.SetDefault("recommend.candidates-file", "candidate.csv")
	viper.SetDefault("ledger.backend", "file")
	viper.SetDefault("ledger.file", "fetched_companies.txt")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talent-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional, the real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Everything has a default or an environment variable, so the file is optional unless given explicitly.
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

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.LinkedIn == nil {
		config.LinkedIn = &LinkedInConfig{}
	}
	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}
	if config.Recommend == nil {
		config.Recommend = &RecommendConfig{}
	}
	if config.Ledger == nil {
		config.Ledger = &LedgerConfig{}
	}

	return config, nil
}
