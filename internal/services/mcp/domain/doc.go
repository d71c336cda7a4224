// Package domain defines the MCP tool schemas and handlers for the build
// ledger. Handlers delegate to the application service and render typed
// rejections as localized tool errors.
package domain
