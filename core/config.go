package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	AppName  string
	Build    string

	RollbarToken string

	Database struct {
		// URL selects the backend by scheme (postgres:// or mongodb://)
		// and points at the target instance. It is the single required
		// configuration value.
		URL             string
		ConnectTimeout  time.Duration
		SocketTimeout   time.Duration
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}
}

// NewConfig loads the application configuration from defaults, an optional
// config/.env.<env> file and the environment. A missing database URL is a
// startup-fatal error, never a per-call one.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("build", "dev")
	v.SetDefault("databaseConnectTimeout", 20*time.Second)
	v.SetDefault("databaseSocketTimeout", 20*time.Second)
	v.SetDefault("databaseMaxOpenConns", 50)
	v.SetDefault("databaseMaxIdleConns", 10)
	v.SetDefault("databaseConnMaxLifetime", 5*time.Minute)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	testMode := false
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		testMode = true
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		}
	}
	v.AutomaticEnv()

	// the database URL is looked up unprefixed: it is set by the hosting
	// platform, not by us
	_ = v.BindEnv("databaseUrl", "DATABASE_URL", "MONGODB_URL")
	_ = v.BindEnv("rollbarToken", "ROLLBAR_TOKEN")

	conf := &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     testMode,
		Env:          env,
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Database.URL = v.GetString("databaseUrl")
	conf.Database.ConnectTimeout = v.GetDuration("databaseConnectTimeout")
	conf.Database.SocketTimeout = v.GetDuration("databaseSocketTimeout")
	conf.Database.MaxOpenConns = v.GetInt("databaseMaxOpenConns")
	conf.Database.MaxIdleConns = v.GetInt("databaseMaxIdleConns")
	conf.Database.ConnMaxLifetime = v.GetDuration("databaseConnMaxLifetime")

	if conf.Database.URL == "" {
		log.Fatal("config: DATABASE_URL (or MONGODB_URL) is not set")
	}
	return conf
}
