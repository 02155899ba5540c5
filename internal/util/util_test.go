package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffMimeHTTP(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/png", SniffMimeHTTP([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP(nil))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "hello", StripCodeFences("```\nhello\n```"))
	assert.Equal(t, "hello", StripCodeFences("```text\nhello\n```"))
	assert.Equal(t, "hello", StripCodeFences("  hello  "))
	assert.Equal(t, "", StripCodeFences("``````"))
}

func TestMakeDataURL(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,QUJD", MakeDataURL("image/jpeg", "QUJD"))
}
