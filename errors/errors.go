package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"go.vocdoni.io/dvote/log"
)

// Error is used by handler functions to wrap errors, assigning a unique error code
// and also specifying which HTTP Status should be used.
type Error struct {
	Err        error  // Error returned to the client
	Code       int    // Error code
	HTTPstatus int    // HTTP status code to return
	LogLevel   string // Log level for this error (defaults to "debug")
	Data       any    // Optional data to include in the error response
	cause      error  // Internal error, only logged
}

// MarshalJSON returns a JSON containing Err.Error() and Code. Field HTTPstatus is ignored.
//
// Example output: {"error":"user not found","code":40018}
func (e Error) MarshalJSON() ([]byte, error) {
	// This anon struct is needed to actually include the error string,
	// since it wouldn't be marshaled otherwise. (json.Marshal doesn't call Err.Error())
	return json.Marshal(
		struct {
			Error string `json:"error"`
			Code  int    `json:"code"`
			Data  any    `json:"data,omitempty"`
		}{
			Error: e.Err.Error(),
			Code:  e.Code,
			Data:  e.Data,
		})
}

// Error returns the Message contained inside the APIerror
func (e Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the internal cause if any, else the client facing error.
func (e Error) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return e.Err
}

// Write serializes a JSON msg using Error.Err and Error.Code
// and passes that to http.Error(). It also logs the error with appropriate level.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}

	// Get caller information for better logging
	pc, file, line, _ := runtime.Caller(1)
	caller := runtime.FuncForPC(pc).Name()

	logLevel := e.LogLevel
	if logLevel == "" {
		if e.HTTPstatus >= 500 {
			logLevel = "error"
		} else {
			logLevel = "debug"
		}
	}

	if e.HTTPstatus >= 500 {
		// the internal cause never reaches the client, only the logs
		internal := e.Err
		if e.cause != nil {
			internal = e.cause
		}
		log.Errorw(internal, fmt.Sprintf("API error response [%d]: %s (code: %d, caller: %s, file: %s:%d)",
			e.HTTPstatus, e.Error(), e.Code, caller, file, line))
	} else {
		errMsg := fmt.Sprintf("API error response [%d]: %s (code: %d, caller: %s)",
			e.HTTPstatus, e.Error(), e.Code, caller)
		if e.cause != nil {
			errMsg = fmt.Sprintf("%s cause: %v", errMsg, e.cause)
		}
		switch logLevel {
		case "error":
			log.Errorw(e.Unwrap(), errMsg)
		case "info":
			log.Infow(errMsg)
		case "warn":
			log.Warnw(errMsg)
		default:
			log.Debugw(errMsg)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	http.Error(w, string(msg), e.HTTPstatus)
}

// Withf returns a copy of Error with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	e.Err = fmt.Errorf("%w: %v", e.Err, fmt.Sprintf(format, args...))
	return e
}

// With returns a copy of Error with the string appended at the end of e.Err
func (e Error) With(s string) Error {
	e.Err = fmt.Errorf("%w: %v", e.Err, s)
	return e
}

// WithErr returns a copy of Error with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	e.Err = fmt.Errorf("%w: %v", e.Err, err.Error())
	return e
}

// WithCause returns a copy of Error that keeps the client facing message
// untouched and logs err when written.
func (e Error) WithCause(err error) Error {
	e.cause = err
	return e
}

// WithLogLevel returns a copy of Error with the specified log level
func (e Error) WithLogLevel(level string) Error {
	e.LogLevel = level
	return e
}

// WithData returns a copy of Error including data in the response body.
func (e Error) WithData(data any) Error {
	e.Data = data
	return e
}
