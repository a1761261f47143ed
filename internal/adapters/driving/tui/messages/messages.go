// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// SearchRequested is a command to match a customer request.
type SearchRequested struct {
	Query   string
	Options domain.SearchOptions
}

// SearchCompleted carries the ranked suppliers and recommendation back to the model.
type SearchCompleted struct {
	Result *domain.MatchResult
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the request input and candidates view.
	ViewSearch
	// ViewRoles lists known supplier roles.
	ViewRoles
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewRoles:
		return "roles"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// RolesLoaded carries the role catalogue.
type RolesLoaded struct {
	Roles []domain.Role
	Err   error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
