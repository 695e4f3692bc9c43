package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by errors caused by inconsistent type configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrWrongFormat is matched by malformed pair ids and mapping targets.
	ErrWrongFormat = errors.New("wrong format")

	// ErrIllegalArgument is returned when a value cannot be built from its parts.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrMissingDependencyFile is matched when the archive lacks an expected artifact.
	ErrMissingDependencyFile = errors.New("missing dependency file")

	// ErrInvalidIDMappingTarget is matched when a mapped identifier cannot be used on the target.
	ErrInvalidIDMappingTarget = errors.New("invalid id mapping target")

	// ErrNotFound is matched when a referenced object vanished on the source.
	ErrNotFound = errors.New("not found")

	// ErrUnexpected is matched by lower-layer failures wrapped with the object identity.
	ErrUnexpected = errors.New("unexpected error")

	// ErrUnsupportedNesting is returned when a literal id resolves through more than one parent level.
	ErrUnsupportedNesting = errors.New("unsupported parent nesting")

	// ErrMappingNotFound is returned by mapping stores for unknown keys.
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrArchiveUnreadable is returned by archives whose container cannot be read.
	ErrArchiveUnreadable = errors.New("archive unreadable")

	// ErrJournalNotFound is returned when no transaction log exists for an operation.
	ErrJournalNotFound = errors.New("journal not found")
)

// ConfigurationError reports an unknown type or a bad adapter binding.
type ConfigurationError struct {
	Type   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for type %q: %s", e.Type, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// HandlerInitError reports that the adapter bound to a type could not be constructed.
type HandlerInitError struct {
	Type  string
	Cause string
	Err   error
}

func (e *HandlerInitError) Error() string {
	return fmt.Sprintf("cannot initialize handler for type %q: %s", e.Type, e.Cause)
}

func (e *HandlerInitError) Unwrap() error { return e.Err }

func (e *HandlerInitError) Is(target error) bool { return target == ErrConfiguration }

// FormatError reports a malformed textual value.
type FormatError struct {
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("wrong format %q: %s", e.Value, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrWrongFormat }

// MissingDependencyFileError reports an artifact expected in the archive but absent.
type MissingDependencyFileError struct {
	FileType    string
	ObjectType  string
	ObjectID    string
	DisplayName string
}

func (e *MissingDependencyFileError) Error() string {
	return fmt.Sprintf("missing %s file for %s %q (%s)", e.FileType, e.ObjectType, e.DisplayName, e.ObjectID)
}

func (e *MissingDependencyFileError) Is(target error) bool { return target == ErrMissingDependencyFile }

// InvalidIDMappingTargetError reports a mapping whose target value is unusable.
type InvalidIDMappingTargetError struct {
	ObjectType   string
	ID           string
	SourceServer string
	Target       string
}

func (e *InvalidIDMappingTargetError) Error() string {
	return fmt.Sprintf("invalid id mapping target %q for %s %q from server %q", e.Target, e.ObjectType, e.ID, e.SourceServer)
}

func (e *InvalidIDMappingTargetError) Is(target error) bool { return target == ErrInvalidIDMappingTarget }

// NotFoundError reports an object that no longer exists on the source.
type NotFoundError struct {
	ObjectType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.ObjectType, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnexpectedError wraps a lower-layer failure with the identity of the enclosing object.
type UnexpectedError struct {
	ObjectType  string
	ID          string
	DisplayName string
	Err         error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s %q (%s): %v", e.ObjectType, e.DisplayName, e.ID, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

func (e *UnexpectedError) Is(target error) bool { return target == ErrUnexpected }

// Enrich attaches the identity of dep to err before it crosses a component boundary.
// Errors that already identify their object are returned unchanged.
func Enrich(dep Dependency, err error) error {
	if err == nil {
		return nil
	}
	var ue *UnexpectedError
	if errors.As(err, &ue) {
		return err
	}
	var mf *MissingDependencyFileError
	if errors.As(err, &mf) {
		return err
	}
	return &UnexpectedError{
		ObjectType:  dep.Type,
		ID:          dep.ID,
		DisplayName: dep.Name(),
		Err:         err,
	}
}

// IsRecoverable reports whether err only affects the object that raised it.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMissingDependencyFile) || errors.Is(err, ErrNotFound)
}
