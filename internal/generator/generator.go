package generator

import (
	"github.com/google/uuid"
)

// Generator produces a new value of type T on demand. Clip IDs and
// ingest object keys come from implementations of this interface so
// tests can pin them down.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator produces UUIDv4 strings.
// It implements the Generator interface.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = &UUIDV4Generator{}
