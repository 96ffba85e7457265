// Package config assembles runtime settings for the speaker tools.
//
// # Overview
//
// Settings are layered, each layer overriding the previous one:
//
//  1. built-in defaults (LoadDefaults)
//  2. an optional JSON or YAML file given with -c / -config
//  3. SPEAKER_* environment variables
//  4. command-line flags
//
// Load consumes only the flags it knows and hands the remaining arguments
// back so a command router can parse them.
//
// # Typical Usage
//
//	cfg, rest, err := config.Load(os.Args[1:])
//	if err != nil {
//		return err
//	}
//	root.SetArgs(rest)
package config
