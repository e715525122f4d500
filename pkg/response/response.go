package response

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// APIResponse is the envelope every HTTP endpoint returns.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// OKT returns a successful response with data.
func OKT[T any](message string, data T) *APIResponse[T] {
	return &APIResponse[T]{Status: StatusSuccess, Message: message, Data: data}
}

// ErrorT returns an error response with message and optional field-scoped detail.
func ErrorT(message string, errs any) *APIResponse[any] {
	return &APIResponse[any]{Status: StatusError, Message: message, Errors: errs}
}

// FieldErrors maps field name to a list of human-readable problems.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}
