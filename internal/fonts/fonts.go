// Package fonts holds the parsed TrueType font used for report text.
// A parsed font is safe to share; faces are not, so callers create a face
// per drawing goroutine.
package fonts

import (
	"os"
	"sync"

	"github.com/go-faster/errors"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

type Font struct {
	ttf *truetype.Font
}

func Parse(data []byte) (*Font, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	return &Font{ttf: ttf}, nil
}

// Load reads a font file, or returns the bundled Go Regular font when path
// is empty.
func Load(path string) (*Font, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read font %s", path)
	}
	return Parse(data)
}

// Default is the bundled Go Regular font, parsed once.
var Default = sync.OnceValues(func() (*Font, error) {
	return Parse(goregular.TTF)
})

// Face returns a new face at the given point size.
func (f *Font) Face(points float64) font.Face {
	return truetype.NewFace(f.ttf, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
