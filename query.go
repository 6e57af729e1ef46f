package onnxdetect

import (
	"fmt"
	"io"
)

// Query the runtime and loaded model to get input and output tensor information
// as well as the engine version in text/human readable format
func (r *Runtime) Query(w io.Writer) error {

	if _, err := fmt.Fprintf(w, "ONNX Runtime Version: %s\n", r.Version()); err != nil {
		return err
	}

	// get model input and output numbers
	num := r.QueryModelIONumber()

	fmt.Fprintf(w, "Model Input Number: %d, Output Number: %d\n", num.NumberInput, num.NumberOutput)

	fmt.Fprintf(w, "Input tensors:\n")

	for _, attr := range r.inputAttrs {
		fmt.Fprintf(w, "  %s\n", attr.String())
	}

	fmt.Fprintf(w, "Output tensors:\n")

	for _, attr := range r.outputAttrs {
		fmt.Fprintf(w, "  %s\n", attr.String())
	}

	width, height := r.InputSize()
	_, err := fmt.Fprintf(w, "Configured input: name=%s, size=%dx%d, fp16=%t\n",
		r.inputName, width, height, r.fp16)

	return err
}
