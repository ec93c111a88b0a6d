package compose

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-faster/errors"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", errors.Errorf("unsupported report format %q", s)
	}
}

func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(92))
	case FormatPNG, "":
		err = imaging.Encode(w, img, imaging.PNG)
	default:
		return errors.Errorf("unsupported report format %q", f)
	}
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	return nil
}

// fitTile decodes a rendered chart and makes it exactly cell-sized, scaling
// it down to fit and centering it on the background if needed.
func fitTile(data []byte, cell image.Rectangle, bg color.Color) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w, h := cell.Dx(), cell.Dy()
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img, nil
	}
	if b.Dx() > w || b.Dy() > h {
		img = imaging.Fit(img, w, h, imaging.Lanczos)
	}
	return imaging.PasteCenter(imaging.New(w, h, bg), img), nil
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}
