// Package cli implements the speaker command line on top of app.App.
//
// # Overview
//
// Every subcommand opens the application from the already loaded
// config.Config, runs one service call and closes it again. Output is text
// by default or JSON with --format json.
//
// # Key Types
//
//   - NewRootCommand: the cobra tree (migrate, register, voice, publish,
//     listings, prefs, stats, audit).
//   - RootOptions: the global --format flag plus the config used to open
//     the application.
//
// # Typical Usage
//
//	cfg, rest, err := config.Load(os.Args[1:])
//	root := cli.NewRootCommand(cfg)
//	root.SetArgs(rest)
//	err = root.ExecuteContext(ctx)
package cli
