package session

import (
	"errors"
)

var (
	// ErrBlankInput is a warning: extract was asked for with no text.
	ErrBlankInput = errors.New("Please enter a financial paragraph first.")
	// ErrBusy is a warning: the session already has an extraction in flight.
	ErrBusy = errors.New("An extraction is already running for this session. Please wait for it to finish.")
)

// ExtractionError wraps a gateway failure for display.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause == nil {
		return "Unable to extract data"
	}
	return "Unable to extract data: " + e.Cause.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// Notice levels, as shown on the page.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// SuccessMessage is shown above a freshly extracted table.
const SuccessMessage = "Data extraction complete!"

// Notice is a one-shot user-facing message produced by an action.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// NoticeFor maps an action error onto what the user sees. A nil error is success.
func NoticeFor(err error) Notice {
	var ee *ExtractionError
	switch {
	case err == nil:
		return Notice{Level: LevelSuccess, Message: SuccessMessage}
	case errors.Is(err, ErrBlankInput), errors.Is(err, ErrBusy):
		return Notice{Level: LevelWarning, Message: err.Error()}
	case errors.As(err, &ee):
		return Notice{Level: LevelError, Message: ee.Error()}
	default:
		return Notice{Level: LevelError, Message: (&ExtractionError{Cause: err}).Error()}
	}
}
