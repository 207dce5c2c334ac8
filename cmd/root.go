package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobchat"
)

type Config struct {
	Server    *ServerConfig    `mapstructure:"server"`
	Search    *SearchConfig    `mapstructure:"search"`
	Providers *ProvidersConfig `mapstructure:"providers"`
	AI        *AIConfig        `mapstructure:"ai"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type SearchConfig struct {
	PageSize               int     `mapstructure:"page-size"`
	MaxSources             int     `mapstructure:"max-sources"`
	ProviderTimeoutSeconds int     `mapstructure:"provider-timeout-seconds"`
	RequestsPerSecond      float64 `mapstructure:"requests-per-second"`
	Burst                  int     `mapstructure:"burst"`
}

type ProvidersConfig struct {
	Jooble     *JoobleConfig     `mapstructure:"jooble"`
	Careerjet  *CareerjetConfig  `mapstructure:"careerjet"`
	Web3Career *Web3CareerConfig `mapstructure:"web3career"`
}

type JoobleConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type CareerjetConfig struct {
	AffID     string `mapstructure:"affid"`
	AffIDFile string `mapstructure:"affid-file"`
	BaseURL   string `mapstructure:"base-url"`
	Locale    string `mapstructure:"locale"`
}

type Web3CareerConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobchat answers chat queries by aggregating job listings from several providers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"providers.jooble.api-key-file":     "JOOBLE_API_KEY_FILE",
		"providers.careerjet.affid-file":    "CAREERJET_AFFID_FILE",
		"providers.web3career.api-key-file": "WEB3CAREER_API_KEY_FILE",
		"ai.gemini.api-key-file":            "GEMINI_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobchat.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for serve and chat. Skip for version and help.
	if serveCmd.CalledAs() == "" && chatCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
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
