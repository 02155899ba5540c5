package page

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"diary-ocr/internal/util"
)

const jpegQuality = 90

// Payload is one page image serialized for transport.
type Payload struct {
	Data []byte
	MIME string
}

// EncodeJPEG serializes a page bitmap as JPEG. Deterministic for a given
// bitmap, so re-running the pipeline sends byte-identical payloads.
func EncodeJPEG(img image.Image) (Payload, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Payload{}, fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
	}
	return Payload{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

func (p Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURL returns the payload as a data: URL the OpenAI vision API accepts.
func (p Payload) DataURL() string {
	return util.MakeDataURL(p.MIME, p.Base64())
}
