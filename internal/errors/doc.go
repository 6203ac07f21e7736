// Package errors provides coded, structured errors for the CLI, the dev
// server and the host's outer surfaces.
//
// Each code maps to a registered template with a category, a short
// message and a longer explanation:
//
//	err := errors.New("E120").
//	    WithDetail("port must be between 1 and 65535, got 0").
//	    WithSuggestion(`Set "dev.port" in autotrack.json`)
//
//	errors.PrintError(err)
//	// ERROR E120: Invalid configuration
//	//
//	//   port must be between 1 and 65535, got 0
//	//
//	//   Hint: Set "dev.port" in autotrack.json
//
// # Error Codes
//
//   - E001-E019: runtime (render panics, event dispatch)
//   - E060-E079: protocol (dev server frames and write requests)
//   - E120-E139: configuration
//   - E140-E159: CLI
//   - E200-E219: snapshot storage
package errors
