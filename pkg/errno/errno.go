package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno, looking through wrapped errors
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, err.Error()
	}
	var val Errno
	if errors.As(err, &val) {
		return val.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Business Errors (20000+)
var (
	ErrPasswordIncorrect = Errno{Code: 20102, Message: "Password incorrect"}
	ErrKeystoreNotFound  = Errno{Code: 20103, Message: "Keystore not found"}
)

// Transaction pipeline errors (30000+)
var (
	ErrValidation      = Errno{Code: 30001, Message: "Invalid transaction form"}
	ErrInvalidAddress  = Errno{Code: 30002, Message: "Invalid address"}
	ErrStagePending    = Errno{Code: 30101, Message: "A staging pass is already open"}
	ErrMissingHashLock = Errno{Code: 30102, Message: "Signed hash lock not found"}
	ErrMissingPartial  = Errno{Code: 30103, Message: "Signed aggregate bonded not found"}
	ErrLockPending     = Errno{Code: 30104, Message: "Hash lock not confirmed yet"}
	ErrSigning         = Errno{Code: 30201, Message: "Signing failed"}
	ErrGateway         = Errno{Code: 30301, Message: "Gateway error"}
	ErrListener        = Errno{Code: 30302, Message: "Listener error"}
	ErrNotFound        = Errno{Code: 30401, Message: "Resource not found"}
)
