package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	"E100": {
		Category: CategoryIsolation,
		Message:  "Empty isolation scope",
		Detail:   "IsolateSource and IsolateSink require a non-empty scope identifier.",
	},
	"E101": {
		Category: CategoryStream,
		Message:  "Invalid virtual tree stream",
		Detail:   "The stream was not built from a producer.",
	},
	"E102": {
		Category: CategorySelector,
		Message:  "Invalid selector",
	},
	"E103": {
		Category: CategoryDelivery,
		Message:  "Event subscriber panicked",
		Detail:   "The subscription was closed with this error; other subscribers were still notified.",
	},
	"E104": {
		Category: CategoryLifecycle,
		Message:  "Driver disposed",
	},
	"E105": {
		Category: CategoryDelivery,
		Message:  "Event target is not attached to the render root",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E107": {
		Category: CategoryIsolation,
		Message:  "Invalid DOM source",
		Detail:   "Scoped sources can only be derived from a source created by a driver.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
