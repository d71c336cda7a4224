// Package branding holds user-facing product identity strings.
package branding

// AppName is the display name used in tool metadata and CLI output.
const AppName = "Build Ledger"
