package onnxdetect

import (
	"fmt"
	ort "github.com/yalue/onnxruntime_go"
	"strings"
)

// TensorType is the element type of a Model tensor
type TensorType int

const (
	TensorUndefined TensorType = iota
	TensorFloat32
	TensorFloat16
	TensorFloat64
	TensorInt8
	TensorUint8
	TensorInt16
	TensorUint16
	TensorInt32
	TensorUint32
	TensorInt64
	TensorBool
)

// ortTensorTypes maps ONNX Runtime element types to TensorType
var ortTensorTypes = map[ort.TensorElementDataType]TensorType{
	ort.TensorElementDataTypeFloat:   TensorFloat32,
	ort.TensorElementDataTypeFloat16: TensorFloat16,
	ort.TensorElementDataTypeDouble:  TensorFloat64,
	ort.TensorElementDataTypeInt8:    TensorInt8,
	ort.TensorElementDataTypeUint8:   TensorUint8,
	ort.TensorElementDataTypeInt16:   TensorInt16,
	ort.TensorElementDataTypeUint16:  TensorUint16,
	ort.TensorElementDataTypeInt32:   TensorInt32,
	ort.TensorElementDataTypeUint32:  TensorUint32,
	ort.TensorElementDataTypeInt64:   TensorInt64,
	ort.TensorElementDataTypeBool:    TensorBool,
}

// String returns a readable description of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "FP32"
	case TensorFloat16:
		return "FP16"
	case TensorFloat64:
		return "FP64"
	case TensorInt8:
		return "INT8"
	case TensorUint8:
		return "UINT8"
	case TensorInt16:
		return "INT16"
	case TensorUint16:
		return "UINT16"
	case TensorInt32:
		return "INT32"
	case TensorUint32:
		return "UINT32"
	case TensorInt64:
		return "INT64"
	case TensorBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// TensorAttr describes a Model input or output tensor as declared in the
// ONNX graph
type TensorAttr struct {
	Index int
	Name  string
	Type  TensorType
	// Dims are the declared dimensions, a value of -1 marks a dynamic
	// (symbolic) dimension
	Dims []int64
}

// convertTensorAttr converts ONNX Runtime tensor info to a TensorAttr
func convertTensorAttr(idx int, info ort.InputOutputInfo) TensorAttr {

	dims := make([]int64, len(info.Dimensions))
	copy(dims, info.Dimensions)

	tensorType, ok := ortTensorTypes[info.DataType]

	if !ok {
		tensorType = TensorUndefined
	}

	return TensorAttr{
		Index: idx,
		Name:  info.Name,
		Type:  tensorType,
		Dims:  dims,
	}
}

// String returns the TensorAttr's attributes formatted as a string
func (a TensorAttr) String() string {

	dims := make([]string, len(a.Dims))

	for i, d := range a.Dims {
		if d < 0 {
			dims[i] = "?"
			continue
		}

		dims[i] = fmt.Sprintf("%d", d)
	}

	return fmt.Sprintf("index=%d, name=%s, n_dims=%d, dims=[%s], type=%s",
		a.Index, a.Name, len(a.Dims), strings.Join(dims, ", "), a.Type.String())
}

// Tensor is an input or output tensor passed to and from a Session.  Data is
// held in Float32 or Float16 (raw FP16 bits) depending on Type.
type Tensor struct {
	// Name is the graph name of the tensor
	Name    string
	Shape   []int64
	Type    TensorType
	Float32 []float32
	Float16 []uint16
}

// Len returns the number of elements in the Tensor
func (t *Tensor) Len() int {

	if t.Type == TensorFloat16 {
		return len(t.Float16)
	}

	return len(t.Float32)
}

// elements returns the number of elements the Tensor's shape describes
func (t *Tensor) elements() int {

	n := 1

	for _, d := range t.Shape {
		n *= int(d)
	}

	return n
}
