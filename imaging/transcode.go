// Package imaging resizes and re-encodes uploaded photos before they are
// handed to the asset store.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Constraints bound the output of a transcode. Quality is in the 0..1 range.
type Constraints struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
}

// Named presets used by the admin workflows.
var (
	// Thumbnail is used for portfolio story covers.
	Thumbnail = Constraints{MaxWidth: 800, MaxHeight: 1200, Quality: 0.8}
	// Featured is used for blog and service imagery.
	Featured = Constraints{MaxWidth: 1200, MaxHeight: 800, Quality: 0.85}
	// Full is used for page-level hero and gallery images.
	Full = Constraints{MaxWidth: 2400, MaxHeight: 2400, Quality: 0.85}
)

// ContentType is the MIME type of every transcoded payload.
const ContentType = "image/jpeg"

// Result is a compressed payload with its final dimensions.
type Result struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
	Ext         string
}

// DecodeError reports input that could not be parsed as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is (or wraps) a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Processor transcodes images. The zero value is ready to use.
type Processor struct{}

// NewProcessor returns a Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Transcode decodes src, applies its EXIF orientation, scales it down to fit
// c (never up) and encodes it as JPEG at c.Quality.
func (p *Processor) Transcode(src []byte, c Constraints) (Result, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return Result{}, &DecodeError{Err: err}
	}
	img = applyOrientation(img, readExifOrientation(src))

	bounds := img.Bounds()
	w, h := Fit(bounds.Dx(), bounds.Dy(), c.MaxWidth, c.MaxHeight)

	// JPEG has no alpha channel; transparent pixels are flattened onto white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(c.Quality)}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Result{
		Data:        buf.Bytes(),
		Width:       w,
		Height:      h,
		ContentType: ContentType,
		Ext:         ".jpg",
	}, nil
}

// Transcode runs the default Processor.
func Transcode(src []byte, c Constraints) (Result, error) {
	return (&Processor{}).Transcode(src, c)
}

// Fit returns the dimensions of a w×h image scaled uniformly to fit inside
// maxW×maxH. Images already inside the bounds are returned unchanged. A
// non-positive bound leaves that axis unconstrained.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	overW := maxW > 0 && w > maxW
	overH := maxH > 0 && h > maxH
	if !overW && !overH {
		return w, h
	}

	ratio := math.Inf(1)
	if maxW > 0 {
		ratio = float64(maxW) / float64(w)
	}
	if maxH > 0 {
		ratio = math.Min(ratio, float64(maxH)/float64(h))
	}

	nw := clamp(int(math.Round(float64(w)*ratio)), 1, boundOr(maxW, w))
	nh := clamp(int(math.Round(float64(h)*ratio)), 1, boundOr(maxH, h))
	return nw, nh
}

func boundOr(bound, fallback int) int {
	if bound > 0 {
		return bound
	}
	return fallback
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func jpegQuality(q float64) int {
	if q <= 0 {
		return jpeg.DefaultQuality
	}
	return clamp(int(math.Round(q*100)), 1, 100)
}

// readExifOrientation returns the EXIF orientation tag, or 1 when the data
// carries none.
func readExifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation rotates or flips img so that it displays upright.
// 2: flip H, 3: 180°, 4: flip V, 5: transpose, 6: 90° CW, 7: transverse, 8: 90° CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
