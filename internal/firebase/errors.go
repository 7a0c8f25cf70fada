package firebase

type gatewayError string

// ErrInvalidDataFormat is returned when a read yields a payload that is not
// a mapping of record keys to field mappings.
const ErrInvalidDataFormat = gatewayError("no events found or invalid data format")

func (e gatewayError) Error() string {
	return string(e)
}

// RemoteFetchError reports a failure raised by the database itself:
// transport, permission or any other non-success response.
type RemoteFetchError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	return e.Message
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}
