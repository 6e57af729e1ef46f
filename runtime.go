package onnxdetect

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-onnxdetect/preprocess"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Runtime defines the ONNX inference instance for a loaded Model
type Runtime struct {
	// session is the loaded graph
	session Session
	// inputAttrs caches the Input Tensor Attributes of the Model
	inputAttrs []TensorAttr
	// outputAttrs caches the Output Tensor Attributes of the Model
	outputAttrs []TensorAttr
	// inputName is the graph name of the tensor images are bound to
	inputName string
	// fp16 indicates the Model declares a float16 input, so the input tensor
	// is downcast before inference
	fp16 bool
	// width and height are the spatial input size the Model is configured for
	width  int
	height int
	// ownsEnv is set when Close must release the ONNX Runtime environment
	ownsEnv bool
	logger  *zap.SugaredLogger
}

type runtimeOptions struct {
	libraryPath string
	threads     int
	logger      *zap.SugaredLogger
}

// Option configures a Runtime
type Option func(*runtimeOptions)

// WithSharedLibraryPath sets the path of the onnxruntime shared library to
// load, otherwise the platform default name is used
func WithSharedLibraryPath(path string) Option {
	return func(o *runtimeOptions) {
		o.libraryPath = path
	}
}

// WithIntraOpThreads sets the number of threads ONNX Runtime uses within an
// operator, 0 leaves the ONNX Runtime default
func WithIntraOpThreads(n int) Option {
	return func(o *runtimeOptions) {
		o.threads = n
	}
}

// WithLogger sets the logger used for diagnostic output
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *runtimeOptions) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) runtimeOptions {

	o := runtimeOptions{}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}

	return o
}

// NewRuntime returns an ONNX Runtime instance.  Provide the full path and
// filename of the ONNX model file to run.
func NewRuntime(modelFile string, opts ...Option) (*Runtime, error) {

	o := buildOptions(opts)

	err := acquireEnvironment(o.libraryPath)

	if err != nil {
		return nil, err
	}

	session, err := newORTSession(modelFile, o.threads)

	if err != nil {
		return nil, multierr.Append(err, releaseEnvironment())
	}

	o.logger.Debugw("loaded model", "file", modelFile, "version", session.Version())

	r, err := newRuntime(session, o)

	if err != nil {
		return nil, multierr.Combine(err, session.Close(), releaseEnvironment())
	}

	r.ownsEnv = true
	return r, nil
}

// NewRuntimeFromSession returns a Runtime for an already loaded Session
func NewRuntimeFromSession(session Session, opts ...Option) (*Runtime, error) {
	return newRuntime(session, buildOptions(opts))
}

func newRuntime(session Session, o runtimeOptions) (*Runtime, error) {

	r := &Runtime{
		session:     session,
		inputAttrs:  session.Inputs(),
		outputAttrs: session.Outputs(),
		logger:      o.logger,
	}

	if len(r.inputAttrs) == 0 || len(r.outputAttrs) == 0 {
		return nil, errors.Wrap(ErrModelLoad, "model has no inputs or outputs")
	}

	input := r.inputAttrs[0]
	r.inputName = input.Name

	switch input.Type {
	case TensorFloat32:
	case TensorFloat16:
		r.fp16 = true
	default:
		return nil, errors.Wrapf(ErrModelLoad, "unsupported input tensor type %s", input.Type)
	}

	if len(input.Dims) != 4 {
		return nil, errors.Wrapf(ErrModelLoad, "expected NCHW input, got %s", input.String())
	}

	// dynamic dims fall back to the default size until SetInputSize is called
	r.height = preprocess.DefaultInputSize
	r.width = preprocess.DefaultInputSize

	if input.Dims[2] > 0 {
		r.height = int(input.Dims[2])
	}

	if input.Dims[3] > 0 {
		r.width = int(input.Dims[3])
	}

	r.logger.Debugw("model input", "name", r.inputName, "type", input.Type.String(),
		"width", r.width, "height", r.height)

	return r, nil
}

// Close releases the Model and, for Runtimes created by NewRuntime, the ONNX
// Runtime environment
func (r *Runtime) Close() error {

	err := r.session.Close()

	if r.ownsEnv {
		r.ownsEnv = false
		err = multierr.Append(err, releaseEnvironment())
	}

	return err
}

// SetInputSize reconfigures the spatial size of the Model input, it must
// match the size images are resized to before Predict() is called.  Models
// declaring fixed input dimensions can not be reconfigured to another size.
func (r *Runtime) SetInputSize(width, height int) error {

	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidInput, "input size %dx%d", width, height)
	}

	dims := r.inputAttrs[0].Dims

	if (dims[3] > 0 && int(dims[3]) != width) || (dims[2] > 0 && int(dims[2]) != height) {
		return errors.Wrapf(ErrShapeMismatch, "model %s declares fixed input %dx%d, requested %dx%d",
			r.inputName, dims[3], dims[2], width, height)
	}

	r.width = width
	r.height = height

	return nil
}

// InputSize returns the spatial input size the Model is configured for
func (r *Runtime) InputSize() (width, height int) {
	return r.width, r.height
}

// IsFP16 returns true if the Model input is downcast to float16
func (r *Runtime) IsFP16() bool {
	return r.fp16
}

// InputName returns the graph name of the Model input images are bound to
func (r *Runtime) InputName() string {
	return r.inputName
}

// Version returns the version of the inference engine
func (r *Runtime) Version() string {
	return r.session.Version()
}

// InputAttrs returns the loaded model's input tensor attributes
func (r *Runtime) InputAttrs() []TensorAttr {
	return r.inputAttrs
}

// OutputAttrs returns the loaded model's output tensor attributes
func (r *Runtime) OutputAttrs() []TensorAttr {
	return r.outputAttrs
}
