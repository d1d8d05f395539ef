package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ASISTENCIA"

// Config holds the runtime settings of the server
type Config struct {
	Env           string
	Debug         bool
	Addr          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	UserName      string
	SessionSecret string
	RollbarToken  string
	Seed          bool
}

// New builds a viper instance with defaults, the optional .env file and the environment
func New(dotEnvPath string) *viper.Viper {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("env", "DEV") // DEV (local; default), TEST, PROD
	v.SetDefault("debug", true)
	v.SetDefault("addr", ":8080")
	v.SetDefault("redisAddr", "127.0.0.1:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 8)
	v.SetDefault("userName", "Usuario")
	v.SetDefault("sessionSecret", "cambia-esta-clave-de-sesion")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("seed", true)

	// load .env if it exists (ignore if it does not)
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the settings into a Config
func Load(dotEnvPath string) Config {
	v := New(dotEnvPath)
	return Config{
		Env:           strings.ToUpper(v.GetString("env")),
		Debug:         v.GetBool("debug"),
		Addr:          v.GetString("addr"),
		RedisAddr:     v.GetString("redisAddr"),
		RedisPassword: v.GetString("redisPassword"),
		RedisDB:       v.GetInt("redisDB"),
		UserName:      v.GetString("userName"),
		SessionSecret: v.GetString("sessionSecret"),
		RollbarToken:  v.GetString("rollbarToken"),
		Seed:          v.GetBool("seed"),
	}
}

// IsProd reports whether the server runs in production mode
func (c Config) IsProd() bool {
	return c.Env == "PROD"
}
