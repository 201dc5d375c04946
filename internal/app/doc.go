// Package app wires application dependencies for the CLI.
//
// It builds the concrete stores and services from Config, exposing them
// via the Wire struct for commands to use. Config values come from an
// optional YAML file merged with command-line flags.
package app
