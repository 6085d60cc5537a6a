package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Configuration struct {
	ListenAddr    string
	BaseURL       string
	SessionSecret string
	Auth          AuthSettings
	Database      struct {
		Host     string
		Port     int
		User     string
		Password string
		DB       string
		SSLMode  string
	}
	Discord DiscordSettings
	Jobs    struct {
		// PasswordSweepSchedule is a cron spec for the expired
		// temporary-password sweeper.
		PasswordSweepSchedule string
	}
}

type AuthSettings struct {
	JWTSecret string
	TokenTTL  time.Duration
	// BootstrapPassword is the seeded superuser password, replacing the
	// compiled-in bypass string of earlier revisions. Empty disables it.
	BootstrapPassword string
}

type DiscordSettings struct {
	APIBaseURL string
	// MemberPageLimit caps the single member page fetched per extraction.
	// Discord serves at most 1000; larger guilds are truncated.
	MemberPageLimit int
	MessageDelay    time.Duration
	RoleCacheTTL    time.Duration
}

// Load reads config.yaml (path optional) plus GUILDCONSOLE_* environment
// overrides.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/guild-console")
	}
	v.SetEnvPrefix("GUILDCONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listenaddr", ":8085")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "guildconsole")
	v.SetDefault("database.db", "guildconsole")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.tokenttl", 12*time.Hour)
	v.SetDefault("discord.apibaseurl", "https://discord.com/api/v10")
	v.SetDefault("discord.memberpagelimit", 1000)
	v.SetDefault("discord.messagedelay", time.Second)
	v.SetDefault("discord.rolecachettl", 15*time.Minute)
	v.SetDefault("jobs.passwordsweepschedule", "@every 10m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Configuration) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("sessionsecret is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtsecret is required")
	}
	if c.Discord.MemberPageLimit <= 0 || c.Discord.MemberPageLimit > 1000 {
		return errors.New("discord.memberpagelimit must be in 1..1000")
	}
	return nil
}

// DatabaseDSN returns the lib/pq connection string.
func (c *Configuration) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host,
		c.Database.Port, c.Database.DB, c.Database.SSLMode,
	)
}
