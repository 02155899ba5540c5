package page

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 0xFF, A: 0xFF})
		}
	}
	return img
}

func writePNG(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, testImage()))
	return path
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindPDF, DetectKind("a/b/diary.pdf"))
	assert.Equal(t, KindPDF, DetectKind("DIARY.PDF"))
	assert.Equal(t, KindHEIC, DetectKind("IMG_0042.HEIC"))
	assert.Equal(t, KindHEIC, DetectKind("photo.heif"))
	assert.Equal(t, KindImage, DetectKind("scan.jpg"))
	assert.Equal(t, KindImage, DetectKind("scan.png"))
	assert.Equal(t, KindImage, DetectKind("noext"))
}

func TestOpen_GenericImageYieldsOnePage(t *testing.T) {
	src, err := Open(writePNG(t, "scan.png"), 300)
	require.NoError(t, err)
	defer src.Close()

	img, err := src.Next()
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)

	// Non-restartable: stays exhausted.
	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.xyz")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not an image"), 0o644))

	_, err := Open(path, 300)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpen_CorruptImage(t *testing.T) {
	// Valid PNG magic then truncated: the codec is found but decoding fails.
	full := writePNG(t, "ok.png")
	data, err := os.ReadFile(full)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, data[:20], 0o644))

	_, err = Open(path, 300)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.png"), 300)
	assert.ErrorIs(t, err, ErrDecode)
}
