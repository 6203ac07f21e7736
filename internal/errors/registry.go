package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Component render panicked",
		Detail:   "A component's Render method panicked while the tree was being mounted. Reads made before the panic were kept; the tree was not mounted.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Unknown hydration ID",
		Detail:   "No element with this hydration ID exists in the current tree. The component may have re-rendered and removed it.",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Handler not found",
		Detail:   "The element has no handler for this event, or the handler has an unsupported signature. Handlers must be func() or func(string).",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Tree unmounted",
		Detail:   "The component tree has been unmounted and no longer accepts events.",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Invalid event frame",
		Detail:   "The websocket frame could not be decoded as an event.",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid property value",
		Detail:   "The request body must be a single JSON value.",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Unknown object",
		Detail:   "No object with this name is registered with the dev server.",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The autotrack.json file could not be parsed as JSON.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Unknown log level",
		Detail:   "Log level must be one of debug, info, warn or error.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Configuration file not readable",
		Detail:   "The configuration file exists but could not be read.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
		Detail:   "The requested demo does not exist.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The dev server stopped with an error.",
	},

	// ============================================
	// Storage Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryStorage,
		Message:  "Snapshot encoding failed",
		Detail:   "The dependency graph snapshot could not be encoded as JSON.",
	},
	"E201": {
		Category: CategoryStorage,
		Message:  "Snapshot write failed",
		Detail:   "The snapshot store rejected the write.",
	},
	"E202": {
		Category: CategoryStorage,
		Message:  "Snapshot store not configured",
		Detail:   "Neither a snapshot directory nor an S3 bucket is configured.",
	},
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// GetAllCodes returns every registered code in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Register adds or replaces a template. It is not safe to call
// concurrently with New.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
