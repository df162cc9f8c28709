package env

import (
	"fmt"
	"os"
	"time"

	"staking_sim/internal/config"
)

const (
	accessTokenKeyEnvName      = "ACCESS_TOKEN"
	accessTokenDurationEnvName = "ACCESS_TOKEN_DURATION"

	defaultAccessTokenDuration = 24 * time.Hour
)

type jwtConfig struct {
	accessTokenSecretKey string
	accessTokenDuration  time.Duration
}

// NewJWTConfig без ACCESS_TOKEN авторизация выключена
func NewJWTConfig() (config.JWTConfig, error) {
	cfg := &jwtConfig{
		accessTokenSecretKey: os.Getenv(accessTokenKeyEnvName),
		accessTokenDuration:  defaultAccessTokenDuration,
	}

	accessTokenDuration := os.Getenv(accessTokenDurationEnvName)
	if len(accessTokenDuration) != 0 {
		parsed, err := time.ParseDuration(accessTokenDuration)
		if err != nil {
			return nil, fmt.Errorf("invalid access token duration: %w", err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("access token duration must be positive, got %s", parsed)
		}
		cfg.accessTokenDuration = parsed
	}

	return cfg, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.accessTokenSecretKey)
}

func (j *jwtConfig) AccessTokenDuration() time.Duration {
	return j.accessTokenDuration
}

func (j *jwtConfig) Enabled() bool {
	return len(j.accessTokenSecretKey) != 0
}
