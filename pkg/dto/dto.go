package dto

import "errors"

// NameRequest is the expected json structure of the request body for the add name route.
type NameRequest struct {
	FullName string `json:"fullName"`
}

// UpdateNameRequest is the expected json structure of the request body for the update name route.
type UpdateNameRequest struct {
	Original    string `json:"original"`
	UpdatedName string `json:"updatedName"`
}

// ReplaceNamesRequest is the expected json structure of the request body for the replace names route.
// A missing or null Names list empties the store.
type ReplaceNamesRequest struct {
	Names []string `json:"names"`
}

// NameQuery holds the query parameters of the search route.
// Exactly one of the fields is used; FullName takes precedence over FirstName and FirstName over LastName.
type NameQuery struct {
	FullName  string `mapstructure:"fullName"`
	FirstName string `mapstructure:"firstName"`
	LastName  string `mapstructure:"lastName"`
}

var ErrEmptyNameQuery = errors.New("one of fullName, firstName or lastName is required")

// Validate returns ErrEmptyNameQuery iff no search parameter is set.
func (q *NameQuery) Validate() error {
	if q.FullName == "" && q.FirstName == "" && q.LastName == "" {
		return ErrEmptyNameQuery
	}
	return nil
}

// NameResponse is the response of routes returning a single name.
type NameResponse struct {
	FullName string `json:"fullName"`
}

// NamesResponse is the response of routes returning a list of names.
type NamesResponse struct {
	Names []string `json:"names"`
}

// SizeResponse is the response of the size route.
type SizeResponse struct {
	Size int `json:"size"`
}

// Formatter mirrors the available Formatters of logrus for configuration purposes.
type Formatter string

const (
	FormatterText = "TextFormatter"
	FormatterJSON = "JSONFormatter"
)

// ContextKey is the type for keys in a request context that is used for passing data to the next handler.
type ContextKey string

// Keys to reference information (for logging or monitoring).
const (
	KeyRequestID = "request_id"
	KeyFullName  = "full_name"
)

// LoggedContextKeys defines which keys will be logged if a context is passed to logrus. See ContextHook.
var LoggedContextKeys = []ContextKey{KeyRequestID, KeyFullName}

// ClientError is the response interface if the request is not valid.
type ClientError struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"errorCode,omitempty"`
}

// InternalServerError is the response interface that is returned when an error occurs.
type InternalServerError struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"errorCode"`
}

// ErrorCode is the type for error codes expected by clients of the name store.
type ErrorCode string

const (
	ErrorNameAlreadyExists ErrorCode = "NAME_ALREADY_EXISTS"
	ErrorNameNotFound      ErrorCode = "NAME_NOT_FOUND"
	ErrorUnknown           ErrorCode = "UNKNOWN"
)
