package preprocess

import (
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"image"
	"io/fs"
	"os"

	// register decoders beyond those imaging pulls in
	_ "golang.org/x/image/webp"
)

// Open decodes the image file at path, rotating it upright according to any
// EXIF orientation tag.  A missing file returns an error matching
// fs.ErrNotExist, a file that can not be decoded returns ErrUnidentifiedImage.
func Open(path string) (image.Image, error) {

	img, err := imaging.Open(path, imaging.AutoOrientation(true))

	if err != nil {
		var pathErr *fs.PathError

		if errors.As(err, &pathErr) {
			return nil, errors.Wrap(err, "error opening image")
		}

		return nil, errors.Wrapf(ErrUnidentifiedImage, "%s: %v", path, err)
	}

	return img, nil
}

// OpenMat reads the image file at path with OpenCV into a BGR gocv.Mat.  The
// caller must Close the returned Mat.
func OpenMat(path string) (gocv.Mat, error) {

	// check file exists in Go, as IMRead only reports an empty Mat
	info, err := os.Stat(path)

	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "error opening image")
	}

	if info.IsDir() {
		return gocv.NewMat(), errors.Wrapf(ErrUnidentifiedImage, "%s is a directory", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)

	if mat.Empty() {
		return mat, errors.Wrapf(ErrUnidentifiedImage, "%s", path)
	}

	return mat, nil
}
