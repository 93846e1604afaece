package main

import (
	"log"

	"spacezoom-desktop/internal/common"
	"spacezoom-desktop/internal/config"
)

// ===================
// Settings Management
// ===================

// GetSettings returns current user settings
func (a *App) GetSettings() (*config.UserSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Return a copy to prevent external modifications
	settingsCopy := *a.settings
	return &settingsCopy, nil
}

// SaveSettings saves user settings to disk and updates app state
func (a *App) SaveSettings(settings *config.UserSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := config.ValidateSettings(settings); err != nil {
		return err
	}
	// The install ID is not user-editable
	settings.InstallID = a.settings.InstallID

	if err := config.SaveSettings(settings); err != nil {
		return err
	}

	if settings.NASAAPIKey != a.settings.NASAAPIKey {
		a.nasa.SetAPIKey(settings.NASAAPIKey)
		a.rateLimiter.Clear(common.ProviderAPOD)
		a.rateLimiter.Clear(common.ProviderNASAImages)
	}
	s := *settings
	a.settings = &s

	// Note: zoom caps apply to viewers opened from now on, cache settings on next restart
	log.Printf("Settings saved. Cache settings will apply on next restart.")

	return nil
}

// GetSettingsPath returns the OS-specific settings file path
func (a *App) GetSettingsPath() string {
	return config.GetSettingsPath()
}
