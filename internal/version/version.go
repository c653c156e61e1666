// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - YAML recipes, instrument registry, watch mode with change events
// 0.2.0 - Sequence export as YAML, JSON and summary table; layered settings
// 0.1.0 - Initial release: frames, offset patterns, KCWI/MOSFIRE/NIRES configs and cals
