package schema

import "time"

// AppConfig is the shared visual and menu customization.
type AppConfig struct {
	AppName       string            `json:"appName,omitempty"`
	LogoURL       string            `json:"logoUrl,omitempty"`
	PrimaryColor  string            `json:"primaryColor,omitempty"`
	MenuOrder     []string          `json:"menuOrder,omitempty"`
	HiddenModules []string          `json:"hiddenModules,omitempty"`
	Labels        map[string]string `json:"labels,omitempty"`
	UpdatedAt     time.Time         `json:"updatedAt,omitempty"`
	UpdatedBy     string            `json:"updatedBy,omitempty"`
}
