package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
	}

	ServerConfig struct {
		Host             string
		Address          string
		DebugHost        string
		ReadTimeout      time.Duration
		WriteTimeout     time.Duration
		ShutdownTimeout  time.Duration
		DisableReqLogs   bool
		CORSAllowOrigins []string
		TrustedProxies   []string // CIDRs allowed to set X-Forwarded-For
		RateLimitRPS     float64
		RateLimitBurst   int
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MaxOpenConns  int
		MaxIdleConns  int
		AutoCreate    bool // create role & database if missing (local dev only)
		AutoMigrate   bool
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the configuration from the environment (prefixed by ENV) and from `config/.env.<env>` if present.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	setDefaults(v, env)
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:             v.GetString("serverHost"),
			Address:          v.GetString("serverAddress"),
			DebugHost:        v.GetString("serverDebugHost"),
			ReadTimeout:      v.GetDuration("serverReadTimeout"),
			WriteTimeout:     v.GetDuration("serverWriteTimeout"),
			ShutdownTimeout:  v.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:   v.GetBool("serverDisableReqLogs"),
			CORSAllowOrigins: v.GetStringSlice("serverCorsAllowOrigins"),
			TrustedProxies:   v.GetStringSlice("serverTrustedProxies"),
			RateLimitRPS:     v.GetFloat64("serverRateLimitRps"),
			RateLimitBurst:   v.GetInt("serverRateLimitBurst"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTls"),
			MaxOpenConns:  v.GetInt("dbMaxOpenConns"),
			MaxIdleConns:  v.GetInt("dbMaxIdleConns"),
			AutoCreate:    v.GetBool("dbAutoCreate"),
			AutoMigrate:   v.GetBool("dbAutoMigrate"),
		},
	}
}

func setDefaults(v *viper.Viper, env string) {
	v.SetTypeByDefaultValue(true)

	local := env == "DEV" || env == "TEST"
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Admissions")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverReadTimeout", 5*time.Second)
	v.SetDefault("serverWriteTimeout", 5*time.Second)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("serverCorsAllowOrigins", []string{"*"})
	v.SetDefault("serverTrustedProxies", []string{})
	v.SetDefault("serverRateLimitRps", 1.0)
	v.SetDefault("serverRateLimitBurst", 10)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "admissions")
	v.SetDefault("dbUser", "admissions")
	v.SetDefault("dbDisableTls", local)
	v.SetDefault("dbMaxOpenConns", 10)
	v.SetDefault("dbMaxIdleConns", 2)
	v.SetDefault("dbAutoCreate", local)
	v.SetDefault("dbAutoMigrate", local)
}
