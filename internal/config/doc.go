// Package config loads VibeWall settings from defaults, an optional config
// file, a .env file and VIBEWALL_-prefixed environment variables, then
// validates them with struct tags before any component is constructed.
package config
