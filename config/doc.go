// Package config declares the protocol's fixed timing and networking
// constants, and the small Config struct for the handful of values a
// deployment legitimately varies.
//
// No config-file parser is introduced: the teacher configures via Go
// struct literals and functional options, never a config-file library,
// and this module follows that.
package config
