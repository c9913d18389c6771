package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInsight marca registros del volcado que rompen algún invariante.
var ErrInvalidInsight = errors.New("invalid insight")

// InvalidFilterError indica una clave de filtro no reconocida.
type InvalidFilterError struct {
	Key string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s", e.Key)
}

// ValidationError indica un valor mal formado para un parámetro reconocido.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Field, e.Reason)
}

// StoreUnavailableError envuelve fallos de conexión o de ejecución en el almacén.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// IsClientError indica si el error se debe a la petición y no al servidor.
func IsClientError(err error) bool {
	var invalidFilter *InvalidFilterError
	var validation *ValidationError
	return errors.As(err, &invalidFilter) || errors.As(err, &validation)
}
