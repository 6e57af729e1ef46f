package onnxdetect

// IONumber holds the number of Input and Output tensors of the Model
type IONumber struct {
	NumberInput  uint32
	NumberOutput uint32
}

// QueryModelIONumber returns the number of Input and Output tensors of the
// Model.  Only the first of each is used for inference.
func (r *Runtime) QueryModelIONumber() IONumber {
	return IONumber{
		NumberInput:  uint32(len(r.inputAttrs)),
		NumberOutput: uint32(len(r.outputAttrs)),
	}
}
