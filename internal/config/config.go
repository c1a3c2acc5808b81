package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

var (
	ErrMissingAccessToken = errors.New("meta access token is not configured")
	ErrMissingAdAccounts  = errors.New("no meta ad accounts configured")
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	CORSOrigins string

	Meta     MetaConfig
	Schedule ScheduleConfig
}

// MetaConfig holds everything the lead ingestion pipeline needs to talk to
// the Graph API.
type MetaConfig struct {
	AccessToken       string
	AdAccountIDs      []string
	FormIDs           []string // empty means discover all
	LeadsPageSize     int
	LeadsSince        time.Time
	AdEffectiveStatus []string
	// CampaignEffectiveStatus covers every state a synced campaign can move
	// into, so paused or finished campaigns keep being refreshed.
	CampaignEffectiveStatus []string
	GraphBaseURL            string
	GraphVersion            string
	MaxAttempts             int
	HTTPTimeout             time.Duration
	RatePerSecond           float64 // 0 disables client side limiting
	BreakerEnabled          bool
	DefaultLeadSource       string
	DefaultCountry          string
}

type ScheduleConfig struct {
	Campaigns string
	Leads     string
	// RunTimeout bounds one scheduled run. On expiry the run stops before
	// its next page; the page in hand is still written.
	RunTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	since, err := parseWatermark(getEnv("META_LEADS_SINCE", ""))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "medagg-crm"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "medagg-crm"),
		CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		Meta: MetaConfig{
			AccessToken:             getEnv("META_ACCESS_TOKEN", ""),
			AdAccountIDs:            NormalizeAdAccountIDs(getEnvList("META_AD_ACCOUNT_IDS")),
			FormIDs:                 getEnvList("META_FORM_IDS"),
			LeadsPageSize:           getEnvInt("META_LEADS_PAGE_SIZE", 100),
			LeadsSince:              since,
			AdEffectiveStatus:       getEnvJSONList("META_AD_EFFECTIVE_STATUS", []string{"ACTIVE"}),
			CampaignEffectiveStatus: getEnvJSONList("META_CAMPAIGN_EFFECTIVE_STATUS", DefaultCampaignStatuses),
			GraphBaseURL:            getEnv("META_GRAPH_BASE_URL", "https://graph.facebook.com"),
			GraphVersion:            getEnv("META_GRAPH_VERSION", "v19.0"),
			MaxAttempts:             getEnvInt("META_MAX_ATTEMPTS", 6),
			HTTPTimeout:             getEnvDuration("META_HTTP_TIMEOUT", 30*time.Second),
			RatePerSecond:           getEnvFloat("META_RATE_PER_SECOND", 0),
			BreakerEnabled:          getEnv("META_BREAKER_ENABLED", "false") == "true",
			DefaultLeadSource:       getEnv("META_DEFAULT_LEAD_SOURCE", "facebook_lead_ads"),
			DefaultCountry:          getEnv("META_DEFAULT_COUNTRY", "IN"),
		},
		Schedule: ScheduleConfig{
			Campaigns:  getEnv("SYNC_CAMPAIGNS_SCHEDULE", ""),
			Leads:      getEnv("SYNC_LEADS_SCHEDULE", ""),
			RunTimeout: getEnvDuration("SYNC_RUN_TIMEOUT", 2*time.Hour),
		},
	}, nil
}

// DefaultCampaignStatuses lists the campaign effective statuses requested
// when META_CAMPAIGN_EFFECTIVE_STATUS is unset.
var DefaultCampaignStatuses = []string{"ACTIVE", "PAUSED", "ARCHIVED", "DELETED", "IN_PROCESS", "WITH_ISSUES"}

// Validate reports the preconditions a sync run cannot do without.
func (m MetaConfig) Validate() error {
	if strings.TrimSpace(m.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	if len(m.AdAccountIDs) == 0 {
		return ErrMissingAdAccounts
	}
	return nil
}

// NormalizeAdAccountIDs adds the act_ prefix the Graph API expects and drops blanks.
func NormalizeAdAccountIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !strings.HasPrefix(id, "act_") {
			id = "act_" + id
		}
		out = append(out, id)
	}
	return out
}

func parseWatermark(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.New("META_LEADS_SINCE must be RFC3339 or unix seconds")
	}
	return t.UTC(), nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, ""))); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(getEnv(key, "")), 64); err == nil && v >= 0 {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(getEnv(key, ""))); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := getEnv(key, "")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvJSONList reads a JSON array of strings; malformed input keeps the fallback.
func getEnvJSONList(key string, fallback []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		log.Printf("Ignoring invalid %s: %q", key, raw)
		return fallback
	}
	return out
}
