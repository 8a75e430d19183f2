package gateway

// Error indicates a failure talking to a gateway: transport, auth, or a
// malformed response body
type Error struct {
	Gateway string
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Gateway + " " + e.Op + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a gateway error; err may be nil when the failure is
// described entirely by message (e.g. a non-success HTTP status)
func NewError(gatewayName, op, message string, err error) *Error {
	return &Error{Gateway: gatewayName, Op: op, Message: message, Err: err}
}

// ErrUnsupportedGateway indicates an unrecognized gateway name, a caller
// input error raised before any storage or network activity
type ErrUnsupportedGateway struct {
	Gateway string
}

func (e ErrUnsupportedGateway) Error() string {
	return "unsupported gateway: " + e.Gateway
}

// Is implements the errors.Is interface for ErrUnsupportedGateway
func (e ErrUnsupportedGateway) Is(target error) bool {
	t, ok := target.(ErrUnsupportedGateway)
	if !ok {
		return false
	}
	if t.Gateway == "" {
		return true
	}
	return e.Gateway == t.Gateway
}
