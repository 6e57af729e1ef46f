/*
go-onnxdetect runs ONNX exported object detection Models, such as those
exported from Custom Vision, on a single image using ONNX Runtime.

Images are scaled to a fixed pixel budget whilst keeping their aspect ratio,
the Model input is reconfigured to the same size and the image is passed as a
(1, 3, height, width) BGR tensor, downcast to float16 for FP16 Models.  The
raw output grid is returned as (height, width, channel) float32 values.

See example code and usage in the example subdirectory.
*/
package onnxdetect
