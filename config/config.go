package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey     string `envconfig:"API_KEY"`
		PolicyFile string `envconfig:"POLICY_FILE"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL             int `envconfig:"TTL"`
		AvailabilityTTL int `envconfig:"AVAILABILITY_TTL" default:"5"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret string `envconfig:"ACCESS_SECRET"`
		Issuer       string `envconfig:"ISSUER"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int              `envconfig:"MAX_RETRY"`
			RetryWaitTime  int              `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string           `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool             `envconfig:"AUTO_MIGRATE"`
			Prefix         string           `envconfig:"PREFIX"`
			Read           PostgresEndpoint `envconfig:"READ"`
			Write          PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable        bool     `envconfig:"ENABLE"`
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topic struct {
			Reservation string `envconfig:"RESERVATION" default:"rms.reservation"`
			Waitlist    string `envconfig:"WAITLIST" default:"rms.waitlist"`
		} `envconfig:"TOPIC"`
	} `envconfig:"KAFKA"`

	External struct {
		Otel struct {
			Endpoint    string  `envconfig:"ENDPOINT"`
			SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			BucketName      string `envconfig:"BUCKET_NAME"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`

	Metrics struct {
		Enable    bool   `envconfig:"ENABLE"`
		Path      string `envconfig:"PATH" default:"/metrics"`
		Namespace string `envconfig:"NAMESPACE" default:"rms"`
	} `envconfig:"METRICS"`

	// Reservation holds the defaults every restaurant starts from. Per-restaurant
	// overrides live in the policy file.
	Reservation struct {
		SlotGranularityMin    int     `envconfig:"SLOT_GRANULARITY_MIN" default:"15"`
		DefaultDurationMin    int     `envconfig:"DEFAULT_DURATION_MIN" default:"90"`
		PastGraceMin          int     `envconfig:"PAST_GRACE_MIN" default:"0"`
		AllowMergedTables     bool    `envconfig:"ALLOW_MERGED_TABLES" default:"false"`
		RecommendationCount   int     `envconfig:"RECOMMENDATION_COUNT" default:"3"`
		AlternativeWindowMin  int     `envconfig:"ALTERNATIVE_WINDOW_MIN" default:"180"`
		AlternativeResults    int     `envconfig:"ALTERNATIVE_RESULTS" default:"3"`
		AlternativeMaxDays    int     `envconfig:"ALTERNATIVE_MAX_DAYS" default:"7"`
		PeakQuantile          float64 `envconfig:"PEAK_QUANTILE" default:"0.75"`
		HighOccupancy         float64 `envconfig:"HIGH_OCCUPANCY" default:"0.85"`
		LowOccupancy          float64 `envconfig:"LOW_OCCUPANCY" default:"0.2"`
		MinConsecutiveSlots   int     `envconfig:"MIN_CONSECUTIVE_SLOTS" default:"2"`
		ArchiveCapacityReport bool    `envconfig:"ARCHIVE_CAPACITY_REPORT" default:"false"`
		Waitlist              struct {
			TimeWeight          float64 `envconfig:"TIME_WEIGHT" default:"1"`
			SmallPartyWeight    float64 `envconfig:"SMALL_PARTY_WEIGHT" default:"10"`
			LargePartyWeight    float64 `envconfig:"LARGE_PARTY_WEIGHT" default:"0"`
			LargePartyThreshold int     `envconfig:"LARGE_PARTY_THRESHOLD" default:"5"`
			PreferenceBonus     float64 `envconfig:"PREFERENCE_BONUS" default:"15"`
			PreferenceTolerance int     `envconfig:"PREFERENCE_TOLERANCE_MIN" default:"30"`
			SuggestionCount     int     `envconfig:"SUGGESTION_COUNT" default:"3"`
		} `envconfig:"WAITLIST"`
	} `envconfig:"RESERVATION"`
}

// PostgresEndpoint is one side of the read/write split.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}
