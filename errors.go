package onnxdetect

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-onnxdetect/preprocess"
	"strings"
)

var (
	// ErrModelLoad is returned when the Model file is missing or can not be
	// loaded by ONNX Runtime
	ErrModelLoad = errors.New("model load failed")
	// ErrInvalidInput is returned for images or sizes with a zero or negative
	// dimension
	ErrInvalidInput = preprocess.ErrInvalidInput
	// ErrShapeMismatch is returned when the spatial dimensions of the input
	// tensor disagree with the input size the Model is configured for
	ErrShapeMismatch = errors.New("input shape mismatch")
	// ErrInference is returned when ONNX Runtime fails to run the Model
	ErrInference = errors.New("inference failed")
	// ErrOutputShape is returned when the Model output can not be squeezed to
	// a (channel, height, width) grid
	ErrOutputShape = errors.New("unexpected output shape")
)

// engineError wraps an error returned by the inference engine during a run
type engineError struct {
	cause error
}

func (e *engineError) Error() string {
	return "inference failed: " + e.cause.Error()
}

func (e *engineError) Unwrap() error {
	return e.cause
}

// Is reports the engine error as ErrInference, and also as ErrShapeMismatch
// when ONNX Runtime rejected the dimensions of the bound input
func (e *engineError) Is(target error) bool {

	switch target {
	case ErrInference:
		return true
	case ErrShapeMismatch:
		// ONNX Runtime's input validation reports "Got invalid dimensions for
		// input: <name> for the following indices" for a wrong spatial size
		// and "Invalid rank for input: <name> Got: N Expected: M" for a
		// wrong number of dims
		msg := e.cause.Error()
		return strings.Contains(msg, "invalid dimensions") ||
			strings.Contains(msg, "Invalid rank")
	}

	return false
}
