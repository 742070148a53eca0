package config

import (
	"strings"

	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that set them.
// SECRET_KEY and PORT keep the names used by existing deployments.
var envBindings = map[string]string{
	"http_addr":                      "HTTP_ADDR",
	"port":                           "PORT",
	"database_dsn":                   "DATABASE_DSN",
	"secret_key":                     "SECRET_KEY",
	"access_token_validity_duration": "ACCESS_TOKEN_VALIDITY",
	"bcrypt_cost":                    "BCRYPT_COST",
	"cors_allowed_origins":           "CORS_ALLOWED_ORIGINS",
	"recipe_api_base_url":            "RECIPE_API_BASE_URL",
	"recipe_cache_ttl":               "RECIPE_CACHE_TTL",
	"redis_addr":                     "REDIS_ADDR",
	"s3_root_user":                   "S3_ROOT_USER",
	"s3_root_password":               "S3_ROOT_PASSWORD",
	"s3_bucket":                      "S3_BUCKET",
	"s3_region":                      "S3_REGION",
	"s3_base_endpoint":               "S3_BASE_ENDPOINT",
	"log_backend":                    "LOG_BACKEND",
}

// parseEnv overlays values from environment variables. PORT is a bare port
// number and is applied only when HTTP_ADDR is not set.
func parseEnv(config *Config) {
	v := viper.New()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if v.IsSet("http_addr") {
		config.HTTPAddr = v.GetString("http_addr")
	} else if v.IsSet("port") {
		config.HTTPAddr = ":" + v.GetString("port")
	}
	if v.IsSet("database_dsn") {
		config.DatabaseDSN = v.GetString("database_dsn")
	}
	if v.IsSet("secret_key") {
		config.SecretKey = v.GetString("secret_key")
	}
	if v.IsSet("access_token_validity_duration") {
		config.AccessTokenValidityDuration = v.GetDuration("access_token_validity_duration")
	}
	if v.IsSet("bcrypt_cost") {
		config.BcryptCost = v.GetInt("bcrypt_cost")
	}
	if v.IsSet("cors_allowed_origins") {
		config.CORSAllowedOrigins = splitList(v.GetString("cors_allowed_origins"))
	}
	if v.IsSet("recipe_api_base_url") {
		config.RecipeAPIBaseURL = v.GetString("recipe_api_base_url")
	}
	if v.IsSet("recipe_cache_ttl") {
		config.RecipeCacheTTL = v.GetDuration("recipe_cache_ttl")
	}
	if v.IsSet("redis_addr") {
		config.RedisAddr = v.GetString("redis_addr")
	}
	if v.IsSet("s3_root_user") {
		config.S3RootUser = v.GetString("s3_root_user")
	}
	if v.IsSet("s3_root_password") {
		config.S3RootPassword = v.GetString("s3_root_password")
	}
	if v.IsSet("s3_bucket") {
		config.S3Bucket = v.GetString("s3_bucket")
	}
	if v.IsSet("s3_region") {
		config.S3Region = v.GetString("s3_region")
	}
	if v.IsSet("s3_base_endpoint") {
		config.S3BaseEndpoint = v.GetString("s3_base_endpoint")
	}
	if v.IsSet("log_backend") {
		config.LogBackend = v.GetString("log_backend")
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
