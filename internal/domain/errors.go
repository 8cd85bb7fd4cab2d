package domain

import "errors"

// ErrorKind classifies domain errors so the delivery layer can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a domain error with an explicit kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and message, so wrapped
// copies of a sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// NewError creates a domain error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a sentinel error while keeping its kind and message.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

// KindOf returns the kind of err. Errors that are not domain errors are Internal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrInvalidID       = NewError(KindValidation, "ID inválido")
	ErrInvalidDecision = NewError(KindValidation, "tipo deve ser 'like' ou 'pass'")
	ErrInvalidStatus   = NewError(KindValidation, "Status inválido. Use: ativo, conversando, adotado ou cancelado")

	ErrPetNotFound    = NewError(KindNotFound, "Pet não encontrado")
	ErrPetNotOwned    = NewError(KindNotFound, "Pet não encontrado ou não pertence a esta instituição")
	ErrPetUnavailable = NewError(KindUnavailable, "Pet não está disponível para adoção")
	ErrMatchNotFound  = NewError(KindNotFound, "Match não encontrado")
	ErrUserNotFound   = NewError(KindNotFound, "Usuário não encontrado")

	ErrAlreadyEvaluated            = NewError(KindConflict, "Você já avaliou este pet")
	ErrInstitutionAlreadyEvaluated = NewError(KindConflict, "Você já avaliou este usuário para este pet")

	ErrInvalidCredentials = NewError(KindUnauthorized, "Credenciais inválidas")
	ErrInvalidToken       = NewError(KindUnauthorized, "token inválido")
)
