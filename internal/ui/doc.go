// Package ui implements the interactive setup wizard using bubbletea's Elm architecture.
//
// The wizard walks a multi-view flow for linking streaming services:
//  1. [WelcomeView] : Setup status summary for the logged-in account
//  2. [ServicesView] : Browse services with per-service connection markers
//  3. [CredentialView] : Enter an API key with inline format validation
//  4. [LinkingView] : Monitor OAuth relay and connection test progress
//  5. [DoneView] : Mark setup complete and display the summary
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the setup Orchestrator, providing
// non-blocking status reporting while a service links.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
