// Package page turns an input file into an ordered sequence of page bitmaps.
//
// PDF files are rasterized one page at a time with MuPDF (go-fitz), HEIC/HEIF
// photos are decoded with goheif, and everything else goes through the
// registered image codecs. Downstream code only ever sees image.Image values.
package page

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/jdeng/goheif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrDecode            = errors.New("decode failed")
	ErrEncode            = errors.New("encode failed")
)

// Kind is the decoding strategy for an input file, resolved once from the
// file extension.
type Kind int

const (
	KindImage Kind = iota
	KindPDF
	KindHEIC
)

func DetectKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF
	case ".heic", ".heif":
		return KindHEIC
	default:
		return KindImage
	}
}

// Source is a lazy, finite, non-restartable sequence of page bitmaps.
// Next returns io.EOF once the pages are exhausted.
type Source interface {
	Next() (image.Image, error)
	Close() error
}

// Open resolves the decoding strategy for path and returns its page source.
// PDF pages are rasterized at the given DPI; higher values help handwriting
// recognition at the cost of payload size.
func Open(path string, dpi int) (Source, error) {
	switch DetectKind(path) {
	case KindPDF:
		doc, err := fitz.New(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open pdf %s: %v", ErrDecode, path, err)
		}
		return &pdfSource{doc: doc, dpi: float64(dpi), n: doc.NumPage()}, nil

	case KindHEIC:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		defer f.Close()
		img, err := goheif.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: heic %s: %v", ErrDecode, path, err)
		}
		return &singleSource{img: img}, nil

	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
			}
			return nil, fmt.Errorf("%w: image %s: %v", ErrDecode, path, err)
		}
		return &singleSource{img: img}, nil
	}
}

type pdfSource struct {
	doc  *fitz.Document
	dpi  float64
	i, n int
}

func (s *pdfSource) Next() (image.Image, error) {
	if s.i >= s.n {
		return nil, io.EOF
	}
	img, err := s.doc.ImageDPI(s.i, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf page %d: %v", ErrDecode, s.i+1, err)
	}
	s.i++
	return img, nil
}

func (s *pdfSource) Close() error { return s.doc.Close() }

type singleSource struct {
	img  image.Image
	done bool
}

func (s *singleSource) Next() (image.Image, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.img, nil
}

func (s *singleSource) Close() error { return nil }
