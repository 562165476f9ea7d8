package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string // fs blob store root for uploaded source files

	EnableLocalAuth bool
	EnableGuestAuth bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// AI provider (OpenAI-compatible)
	AIAPIKey   string
	AIEndpoint string // empty = provider default
	AIModel    string

	QuizQuestionCount int
	QuizDurationSec   int
}

// AIConfigured reports whether gateway calls can be attempted at all.
// When false the service still runs; generation endpoints surface a
// persistent configuration warning instead of failing requests one by one.
func (c Config) AIConfigured() bool { return strings.TrimSpace(c.AIAPIKey) != "" }

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:            mode,
		HTTPAddr:        addr,
		PublicURL:       os.Getenv("PUBLIC_URL"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		BlobBasePath:    envOr("BLOB_BASE_PATH", "./data"),
		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),
		EnableGuestAuth: envBool("ENABLE_GUEST_AUTH", true),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.studypod.dev"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		AIAPIKey:   os.Getenv("AI_API_KEY"),
		AIEndpoint: os.Getenv("AI_ENDPOINT"),
		AIModel:    envOr("AI_MODEL", "gpt-4o-mini"),

		QuizQuestionCount: envInt("QUIZ_QUESTION_COUNT", 5),
		QuizDurationSec:   envInt("QUIZ_DURATION_SEC", 300),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
