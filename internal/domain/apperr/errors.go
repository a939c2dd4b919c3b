// Package apperr defines the failure kinds surfaced by the application layer.
// Callers branch on Kind (or errors.Is against the sentinels below) instead of
// inspecting messages.
package apperr

import "errors"

type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindDuplicateIdentity
	KindNoFilesProvided
	KindStorageWriteFailed
	KindMetadataCommitFailed
	KindPersistence
	KindNotFound
	KindValidation
)

var kindNames = map[Kind]string{
	KindInternal:             "internal",
	KindInvalidCredentials:   "invalid_credentials",
	KindUnauthenticated:      "unauthenticated",
	KindForbidden:            "forbidden",
	KindDuplicateIdentity:    "duplicate_identity",
	KindNoFilesProvided:      "no_files_provided",
	KindStorageWriteFailed:   "storage_write_failed",
	KindMetadataCommitFailed: "metadata_commit_failed",
	KindPersistence:          "persistence_failure",
	KindNotFound:             "not_found",
	KindValidation:           "validation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error carries a Kind, a message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden)
// holds for wrapped variants too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials, Msg: "ID or password incorrect"}
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated, Msg: "login required"}
	ErrForbidden            = &Error{Kind: KindForbidden, Msg: "not allowed to modify this resource"}
	ErrDuplicateIdentity    = &Error{Kind: KindDuplicateIdentity, Msg: "user id already in use"}
	ErrNoFilesProvided      = &Error{Kind: KindNoFilesProvided, Msg: "no files provided"}
	ErrStorageWriteFailed   = &Error{Kind: KindStorageWriteFailed, Msg: "file storage write failed"}
	ErrMetadataCommitFailed = &Error{Kind: KindMetadataCommitFailed, Msg: "file metadata commit failed"}
	ErrPersistence          = &Error{Kind: KindPersistence, Msg: "persistence failure"}
	ErrNotFound             = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrValidation           = &Error{Kind: KindValidation, Msg: "invalid input"}
)

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Persistence wraps a store fault. Errors that already carry a kind pass
// through untouched so a nested failure keeps its original classification.
func Persistence(msg string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(KindPersistence, msg, err)
}

// KindOf reports the kind of the outermost *Error in err's chain,
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
