package routing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyPrompt   = fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	ErrPromptTooLong = fmt.Errorf("%w: prompt too long", ErrInvalidInput)
)

type Stage string

const (
	StageClassification Stage = "classification"
	StageGeneration     Stage = "generation"
)

// RemoteCallError is a failed call to the language model service. It is
// never retried.
type RemoteCallError struct {
	Stage Stage
	Model string
	Err   error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s call to %s failed: %v", e.Stage, e.Model, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
