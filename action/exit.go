package action

import (
	"errors"
	"reflect"

	"github.com/dzonerzy/go-action/middleware"
)

// ExitError lets a handler request a specific exit code
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exit returns an *ExitError carrying code and err
func Exit(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	ValidationError int // default: 3
}

// DefaultExitCodes returns the defaults used by ExitCode
func DefaultExitCodes() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, ValidationError: 3}
}

// ExitCodeManager maps errors and categories to process exit codes.
type ExitCodeManager struct {
	codesByCategory map[ErrorType]int
	codesByType     []typeCode
	sentinels       []sentinelCode
	defaults        ExitCodeDefaults
}

type typeCode struct {
	typ  reflect.Type
	code int
}

type sentinelCode struct {
	err  error
	code int
}

// NewExitCodeManager returns a manager prewired for this package's error
// categories and the middleware error types.
func NewExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByCategory: make(map[ErrorType]int),
	}
	return m.Default(DefaultExitCodes())
}

// Default replaces the default codes and rewires the prewired mappings to them
func (m *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	m.defaults = d
	m.codesByCategory[ErrorTypeIllegalArgument] = d.MisusageError
	m.codesByCategory[ErrorTypeUnknownOption] = d.MisusageError
	m.codesByCategory[ErrorTypeMissingValue] = d.MisusageError
	m.codesByCategory[ErrorTypeOperatorFailure] = d.ValidationError
	m.codesByCategory[ErrorTypeNoHandler] = d.GeneralError

	m.setTypeCode(reflect.TypeOf(&middleware.ValidationError{}), d.ValidationError)
	m.setTypeCode(reflect.TypeOf(&middleware.TimeoutError{}), d.GeneralError)
	m.setTypeCode(reflect.TypeOf(&middleware.RecoveryError{}), d.GeneralError)
	return m
}

// DefineCategory maps an error category to an exit code
func (m *ExitCodeManager) DefineCategory(typ ErrorType, code int) *ExitCodeManager {
	m.codesByCategory[typ] = code
	return m
}

// DefineError maps a sentinel error to an exit code. Any error that
// errors.Is reports as err matches; later definitions win.
func (m *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return m
	}
	m.sentinels = append(m.sentinels, sentinelCode{err: err, code: code})
	return m
}

// DefineErrorType maps every error of the same dynamic type as err to an
// exit code, e.g. DefineErrorType(&QuotaError{}, 5). When an error chain
// matches several registered types the most recently added one wins.
func (m *ExitCodeManager) DefineErrorType(err error, code int) *ExitCodeManager {
	if err == nil {
		return m
	}
	m.setTypeCode(reflect.TypeOf(err), code)
	return m
}

// setTypeCode updates a registered type in place or appends a new one
func (m *ExitCodeManager) setTypeCode(t reflect.Type, code int) {
	for i := range m.codesByType {
		if m.codesByType[i].typ == t {
			m.codesByType[i].code = code
			return
		}
	}
	m.codesByType = append(m.codesByType, typeCode{typ: t, code: code})
}

// Resolve converts an error to an exit code.
// Precedence:
//  1. ExitError (requested code)
//  2. error category (DefineCategory)
//  3. sentinel errors (DefineError)
//  4. concrete error type (DefineErrorType)
//  5. default codes
func (m *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return m.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var typed TypedError
	if errors.As(err, &typed) {
		if code, ok := m.codesByCategory[typed.Type()]; ok {
			return code
		}
	}

	for i := len(m.sentinels) - 1; i >= 0; i-- {
		if errors.Is(err, m.sentinels[i].err) {
			return m.sentinels[i].code
		}
	}

	for i := len(m.codesByType) - 1; i >= 0; i-- {
		tc := m.codesByType[i]
		if errors.As(err, reflect.New(tc.typ).Interface()) {
			return tc.code
		}
	}

	return m.defaults.GeneralError
}

var defaultExitCodes = NewExitCodeManager()

// ExitCode maps err with the default manager: 0 for nil, 2 for misuse
// (illegal argument, unknown option, missing value), 3 for validation
// (operator failure, middleware validation) and 1 otherwise.
func ExitCode(err error) int {
	return defaultExitCodes.Resolve(err)
}
