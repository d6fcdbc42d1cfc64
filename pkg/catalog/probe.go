package catalog

import (
	"image"
	_ "image/gif"  // register GIF header decoder
	_ "image/jpeg" // register JPEG header decoder
	_ "image/png"  // register PNG header decoder
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // register BMP header decoder
	_ "golang.org/x/image/tiff" // register TIFF header decoder
	_ "golang.org/x/image/webp" // register WebP header decoder

	perrors "github.com/matzehuels/photowall/pkg/errors"
)

// Dimensions is the probed size of an image as stored on disk.
type Dimensions struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Orientation int    `json:"orientation,omitempty"` // EXIF orientation, 1..8
	Format      string `json:"format,omitempty"`
}

// Rotated reports whether the EXIF orientation turns the image by 90 degrees.
func (d Dimensions) Rotated() bool {
	return d.Orientation >= 5 && d.Orientation <= 8
}

// Display returns width and height as a viewer shows them.
func (d Dimensions) Display() (w, h int) {
	if d.Rotated() {
		return d.Height, d.Width
	}
	return d.Width, d.Height
}

// AspectRatio returns displayed width over height, or 1 when unknown.
func (d Dimensions) AspectRatio() float64 {
	w, h := d.Display()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// Probe reads the header of the image at path.
func Probe(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ProbeReader(f)
}

// ProbeReader decodes the header from r. When the header cannot be decoded,
// the EXIF pixel dimensions are used instead.
func ProbeReader(r io.ReadSeeker) (Dimensions, error) {
	cfg, format, decodeErr := image.DecodeConfig(r)
	d := Dimensions{Width: cfg.Width, Height: cfg.Height, Format: format}

	if decodeErr == nil && format != "jpeg" && format != "tiff" {
		return d, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return d, perrors.Wrap(perrors.ErrCodeProbe, err, "rewind")
	}
	x, exifErr := exif.Decode(r)
	if exifErr == nil {
		d.Orientation = exifInt(x, exif.Orientation)
		if decodeErr != nil {
			d.Width = exifInt(x, exif.PixelXDimension)
			d.Height = exifInt(x, exif.PixelYDimension)
		}
	}

	if d.Width <= 0 || d.Height <= 0 {
		if decodeErr != nil {
			return d, perrors.Wrap(perrors.ErrCodeProbe, decodeErr, "decode image header")
		}
		return d, perrors.New(perrors.ErrCodeProbe, "image reports no dimensions")
	}
	return d, nil
}

func exifInt(x *exif.Exif, name exif.FieldName) int {
	tag, err := x.Get(name)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}
