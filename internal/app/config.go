package app

import (
	"fmt"
	"time"

	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/envutil"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

// Config holds the process-level settings read once at startup. Connection
// details for Postgres, Redis, Twilio and the LLM live with the client that
// owns them.
type Config struct {
	Port            string
	ServiceName     string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SRS             srs.Config
}

func LoadConfig(log *logger.Logger) (Config, error) {
	log.Info("Loading environment variables...")

	srsCfg := loadSRSConfig()
	if err := srsCfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("srs config: %w", err)
	}

	return Config{
		Port:            envutil.String("PORT", "8080"),
		ServiceName:     envutil.String("SERVICE_NAME", "lingobridge-backend"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		SRS:             srsCfg,
	}, nil
}

// loadSRSConfig layers env overrides on top of the stock scheduler settings.
// The result is validated by LoadConfig before anything is wired to it.
func loadSRSConfig() srs.Config {
	def := srs.DefaultConfig()
	return srs.Config{
		LearningSteps:           envutil.Minutes("SRS_LEARNING_STEPS", def.LearningSteps),
		EasyIntervalDays:        envutil.Float("SRS_EASY_INTERVAL_DAYS", def.EasyIntervalDays),
		MinEaseFactor:           envutil.Float("SRS_MIN_EASE_FACTOR", def.MinEaseFactor),
		LapseIntervalMultiplier: envutil.Float("SRS_LAPSE_INTERVAL_MULTIPLIER", def.LapseIntervalMultiplier),
		IntervalModifier:        envutil.Float("SRS_INTERVAL_MODIFIER", def.IntervalModifier),
		EasyBonus:               envutil.Float("SRS_EASY_BONUS", def.EasyBonus),
		DefaultEaseFactor:       envutil.Float("SRS_DEFAULT_EASE_FACTOR", def.DefaultEaseFactor),
	}
}
