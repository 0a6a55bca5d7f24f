package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Browser struct {
		Headless          bool          `yaml:"headless"`
		StealthMode       bool          `yaml:"stealth_mode"`
		UserAgent         string        `yaml:"user_agent"`
		UserDataDir       string        `yaml:"user_data_dir"`
		BinPath           string        `yaml:"bin_path"`
		NavigationTimeout time.Duration `yaml:"navigation_timeout"`
		DefaultTimeout    time.Duration `yaml:"default_timeout"`
	} `yaml:"browser"`

	Search struct {
		BaseURL            string        `yaml:"base_url"`
		Keywords           string        `yaml:"keywords"`
		Location           string        `yaml:"location"`
		Remote             bool          `yaml:"remote"`
		OnSite             bool          `yaml:"on_site"`
		Hybrid             bool          `yaml:"hybrid"`
		JobTitle           string        `yaml:"job_title"`
		JobDescription     string        `yaml:"job_description"`
		Languages          []string      `yaml:"job_description_languages"`
		PageCap            int           `yaml:"page_cap"`
		PageDelay          time.Duration `yaml:"page_delay"`
		DescriptionTimeout time.Duration `yaml:"description_timeout"`
		SetupTimeout       time.Duration `yaml:"setup_timeout"`
	} `yaml:"search"`

	Apply struct {
		ProfilePath            string        `yaml:"profile_path"`
		ShouldSubmit           bool          `yaml:"should_submit"`
		MaxSteps               int           `yaml:"max_steps"`
		StepTimeout            time.Duration `yaml:"step_timeout"`
		SettleDelay            time.Duration `yaml:"settle_delay"`
		EasyApplyTimeout       time.Duration `yaml:"easy_apply_timeout"`
		ErrorWaitTimeout       time.Duration `yaml:"error_wait_timeout"`
		MaxApplications        int           `yaml:"max_applications"`
		ApplicationsPerHour    int           `yaml:"applications_per_hour"`
		MaxConsecutiveFailures int           `yaml:"max_consecutive_failures"`
		FailureCooldown        time.Duration `yaml:"failure_cooldown"`
	} `yaml:"apply"`

	Store struct {
		Driver     string `yaml:"driver"` // sqlite, redis or none
		SQLitePath string `yaml:"sqlite_path"`
		Redis      struct {
			URL       string        `yaml:"url"`
			Password  string        `yaml:"password"`
			DB        int           `yaml:"db"`
			Timeout   time.Duration `yaml:"timeout"`
			KeyPrefix string        `yaml:"key_prefix"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Server struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`

	Logging struct {
		Level    string                `yaml:"level"`
		Format   string                `yaml:"format"`
		Adapters []types.AdapterConfig `yaml:"adapters"`
	} `yaml:"logging"`
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR references, leaving unset ones untouched
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})
}

// Default returns a Config with every default applied
func Default() *Config {
	config := &Config{}

	config.Browser.Headless = true
	config.Browser.StealthMode = true
	config.Browser.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Browser.UserDataDir = "./data/chrome-profile"
	config.Browser.NavigationTimeout = 60 * time.Second
	config.Browser.DefaultTimeout = 30 * time.Second

	config.Search.BaseURL = "https://www.linkedin.com"
	config.Search.Languages = []string{"any"}
	config.Search.PageCap = 2
	config.Search.PageDelay = 2 * time.Second
	config.Search.DescriptionTimeout = 10 * time.Second
	config.Search.SetupTimeout = 30 * time.Second

	config.Apply.ProfilePath = "configs/profile.yaml"
	config.Apply.MaxSteps = 5
	config.Apply.StepTimeout = 45 * time.Second
	config.Apply.SettleDelay = 2 * time.Second
	config.Apply.EasyApplyTimeout = 10 * time.Second
	config.Apply.ErrorWaitTimeout = 30 * time.Second
	config.Apply.ApplicationsPerHour = 30
	config.Apply.MaxConsecutiveFailures = 5
	config.Apply.FailureCooldown = 10 * time.Minute

	config.Store.Driver = "sqlite"
	config.Store.SQLitePath = "./data/applications.db"
	config.Store.Redis.URL = "redis://localhost:6379"
	config.Store.Redis.Timeout = 5 * time.Second
	config.Store.Redis.KeyPrefix = "autoapply"

	config.Server.Host = "127.0.0.1"
	config.Server.Port = 8089

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), config); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	setString(&c.Browser.UserDataDir, "BROWSER_USER_DATA_DIR")
	setString(&c.Browser.UserAgent, "BROWSER_USER_AGENT")
	setBool(&c.Browser.Headless, "BROWSER_HEADLESS")

	// Docker images usually expose the browser this way
	setString(&c.Browser.BinPath, "CHROME_PATH")
	setString(&c.Browser.BinPath, "CHROME_BIN")

	setString(&c.Search.Keywords, "LINKEDIN_KEYWORDS")
	setString(&c.Search.Location, "LINKEDIN_LOCATION")
	setString(&c.Search.JobTitle, "LINKEDIN_JOB_TITLE")
	setString(&c.Search.JobDescription, "LINKEDIN_JOB_DESCRIPTION")
	if langs := os.Getenv("LINKEDIN_LANGUAGES"); langs != "" {
		c.Search.Languages = splitList(langs)
	}

	setString(&c.Apply.ProfilePath, "APPLY_PROFILE_PATH")
	setBool(&c.Apply.ShouldSubmit, "APPLY_SHOULD_SUBMIT")
	setInt(&c.Apply.MaxApplications, "APPLY_MAX_APPLICATIONS")
	setInt(&c.Apply.ApplicationsPerHour, "APPLY_PER_HOUR")

	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.SQLitePath, "STORE_SQLITE_PATH")
	setString(&c.Store.Redis.URL, "REDIS_URL")
	setString(&c.Store.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Store.Redis.DB, "REDIS_DB")
	setDuration(&c.Store.Redis.Timeout, "REDIS_TIMEOUT")

	setBool(&c.Server.Enabled, "SERVER_ENABLED")
	setString(&c.Server.Host, "HOST")
	setInt(&c.Server.Port, "PORT")

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SearchCriteria builds the discovery criteria from the search section
func (c *Config) SearchCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		Keywords: c.Search.Keywords,
		Location: c.Search.Location,
		Workplace: models.Workplace{
			Remote: c.Search.Remote,
			OnSite: c.Search.OnSite,
			Hybrid: c.Search.Hybrid,
		},
		TitlePattern:       c.Search.JobTitle,
		DescriptionPattern: c.Search.JobDescription,
		Languages:          append([]string(nil), c.Search.Languages...),
	}
}
