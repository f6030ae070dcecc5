package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "d15...f18"
}

// CheckAPIKeys returns the status of the credentials NewsPulse uses.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("NewsAPI Key", cfg.News.NewsAPIKey, "NEWSPULSE_NEWS_NEWSAPI_KEY", "NEWSAPI_KEY"),
	}
}

// checkKey checks if a key is set and whether it came from one of envVars.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
