// Package commands defines the skycast CLI and wires dependencies for subcommands.
//
// Commands
//
//   - serve     Run the web frontend
//   - terminal  Run the interactive terminal frontend
//
// # Implementation
//
// The root command resolves configuration from the environment (and an
// optional .env file), builds the logger, the message catalog and the weather
// client before any subcommand runs. Subcommands add their own frontend and
// session storage.
package commands
