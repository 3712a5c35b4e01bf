package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultServerURL is the backend address the client talks to out of the box
const DefaultServerURL = "http://127.0.0.1:5000"

// ClientConfig holds the TUI client settings.
type ClientConfig struct {
	ServerURL string
	LogFile   string
	LogLevel  string
}

// ServerConfig holds the reference backend settings.
type ServerConfig struct {
	Port           string
	Env            string
	DBPath         string
	AllowedOrigins []string
	LogLevel       string

	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
	CatAPIKey   string

	// HistoryWindow is how many earlier turns of a room are sent to the model
	HistoryWindow int
}

// LoadClient reads client configuration from the environment, loading .env first
// when present.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		ServerURL: getEnv("CATBOT_SERVER_URL", DefaultServerURL),
		LogFile:   getEnv("CATBOT_LOG_FILE", "catbot-client.log"),
		LogLevel:  getEnv("CATBOT_LOG_LEVEL", "info"),
	}
}

// LoadServer reads server configuration from the environment, loading .env first
// when present.
func LoadServer() *ServerConfig {
	_ = godotenv.Load()

	return &ServerConfig{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("ENV", "development"),
		DBPath:         getEnv("DB_PATH", "./chat_history.db"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		CatAPIKey:      os.Getenv("CAT_API_KEY"),
		HistoryWindow:  getEnvInt("HISTORY_WINDOW", 20),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
