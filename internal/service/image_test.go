package service

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"runtime"
	"testing"

	"github.com/recipebox/recipe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeaderOnly returns a PNG with a valid IHDR declaring width x height
// 8-bit grayscale pixels and an empty IDAT.
func pngHeaderOnly(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte("\x89PNG\r\n\x1a\n"))

	chunk := func(typ string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(typ)
		buf.Write(data)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestInspectImage(t *testing.T) {
	format, ok := inspectImage(testutil.PNG(t))
	require.True(t, ok)
	assert.Equal(t, "png", format)

	_, ok = inspectImage([]byte("notanimage"))
	assert.False(t, ok)
}

func TestInspectImage_RejectsOversizedDimensions(t *testing.T) {
	data := pngHeaderOnly(20000, 20000)
	require.Less(t, len(data), 100)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, ok := inspectImage(data)
	runtime.ReadMemStats(&after)

	assert.False(t, ok)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestRecipeUploadImage_OversizedDimensions(t *testing.T) {
	f := newRecipeFixture()
	created := createRecipe(t, f, 1, sampleRequest())

	_, err := f.svc.UploadImage(t.Context(), 1, created.ID, pngHeaderOnly(46340, 46340))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgInvalidImage}, verr.Fields["image"])
	assert.Equal(t, 0, f.images.Len())
}
