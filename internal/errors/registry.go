package errors

// Registered error codes.
const (
	CodeEmptyMessage         = "T001"
	CodeUnknownType          = "T002"
	CodeNegativeDuration     = "T003"
	CodeProgressWithDuration = "T004"
	CodeInvalidProgress      = "T005"

	CodeConfigNotFound = "C001"
	CodeConfigParse    = "C002"
	CodeConfigInvalid  = "C003"

	CodeBadRequest     = "H001"
	CodeUpgradeFailed  = "H002"
	CodeClientGone     = "H003"
	CodeClipboardWrite = "R001"
	CodeEffectFailed   = "R002"
	CodeActionPanicked = "R003"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Validation Errors (T001-T099)
	// ============================================

	CodeEmptyMessage: {
		Category: CategoryValidation,
		Message:  "Toast message is required",
	},
	CodeUnknownType: {
		Category: CategoryValidation,
		Message:  "Unknown toast type",
		Detail:   "Type must be one of success, error, warning, info.",
	},
	CodeNegativeDuration: {
		Category: CategoryValidation,
		Message:  "Toast duration must not be negative",
	},
	CodeProgressWithDuration: {
		Category: CategoryValidation,
		Message:  "Toast cannot carry both a progress value and an explicit duration",
		Detail:   "A progress bar shows explicit data; a countdown bar shows time left. Pick one.",
	},
	CodeInvalidProgress: {
		Category: CategoryValidation,
		Message:  "Toast progress total must be positive",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Configuration value out of range",
	},

	// ============================================
	// Transport Errors (H001-H099)
	// ============================================

	CodeBadRequest: {
		Category: CategoryTransport,
		Message:  "Malformed request body",
	},
	CodeUpgradeFailed: {
		Category: CategoryTransport,
		Message:  "WebSocket upgrade failed",
	},
	CodeClientGone: {
		Category: CategoryTransport,
		Message:  "Client disconnected",
	},

	// ============================================
	// Runtime Errors (R001-R099)
	// ============================================

	CodeClipboardWrite: {
		Category: CategoryRuntime,
		Message:  "Clipboard write failed",
	},
	CodeEffectFailed: {
		Category: CategoryRuntime,
		Message:  "Toast effect failed",
	},
	CodeActionPanicked: {
		Category: CategoryRuntime,
		Message:  "Toast action handler panicked",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
