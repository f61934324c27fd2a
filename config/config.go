package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application settings.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CORSAllowedOrigins []string

	Engine EngineDefaults
}

// EngineDefaults tune the bracket and schedule engine.
type EngineDefaults struct {
	BracketSize int    `toml:"default_bracket_size"`
	CourtCount  int    `toml:"default_court_count"`
	VenueName   string `toml:"default_venue_name"`
	SlotMinutes int    `toml:"default_slot_minutes"`
}

func DefaultEngine() EngineDefaults {
	return EngineDefaults{
		BracketSize: 4,
		CourtCount:  4,
		VenueName:   "Venue 1",
		SlotMinutes: 30,
	}
}

// ArchiveEnabled reports whether all R2 settings are present.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from the environment, optionally seeded from a
// .env file.
func Load() (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	engine := DefaultEngine()
	if path := os.Getenv("ENGINE_CONFIG_FILE"); path != "" {
		engine, err = LoadEngineFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
		CORSAllowedOrigins: parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Engine:             engine,
	}

	return cfg, nil
}

func parseOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// LoadEngineFile reads engine defaults from a TOML file.
func LoadEngineFile(path string) (EngineDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineDefaults{}, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}
	return ParseEngine(data)
}

// ParseEngine decodes engine defaults. Missing or invalid values fall back
// to DefaultEngine.
func ParseEngine(data []byte) (EngineDefaults, error) {
	e := DefaultEngine()
	if err := toml.Unmarshal(data, &e); err != nil {
		return EngineDefaults{}, fmt.Errorf("failed to parse engine config: %w", err)
	}
	def := DefaultEngine()
	switch e.BracketSize {
	case 1, 2, 4, 8:
	default:
		e.BracketSize = def.BracketSize
	}
	if e.CourtCount < 1 {
		e.CourtCount = def.CourtCount
	}
	if strings.TrimSpace(e.VenueName) == "" {
		e.VenueName = def.VenueName
	}
	if e.SlotMinutes < 1 {
		e.SlotMinutes = def.SlotMinutes
	}
	return e, nil
}
