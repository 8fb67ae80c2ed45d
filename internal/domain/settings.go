package domain

import "strings"

// Settings is the singleton notification configuration. Saving replaces it whole.
type Settings struct {
	Receiver string `json:"receiver"`
	BotToken string `json:"botToken,omitempty"`
	ChatID   string `json:"chatId,omitempty"`
}

// DefaultSettings is returned whenever the settings file cannot be read
func DefaultSettings() Settings {
	return Settings{Receiver: ""}
}

// Configured reports whether an order can be dispatched with these settings
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.BotToken) != "" && strings.TrimSpace(s.ChatID) != ""
}
