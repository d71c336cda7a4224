// Package service hosts the build ledger MCP server and selects its transport.
package service
