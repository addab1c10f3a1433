package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	fileWriter, err := writer.CreateFormFile("area_img", filename)
	require.Nil(t, err)
	_, err = fileWriter.Write(content)
	require.Nil(t, err)
	require.Nil(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &form)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("area_img")
	require.Nil(t, err)

	return file, header
}

func TestSaveImage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.Nil(t, err)

	file, header := multipartFile(t, "street.JPG", []byte("fake image bytes"))
	defer file.Close()

	storedPath, err := store.SaveImage("area_img", file, header)
	require.Nil(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(storedPath), "area_img-"))
	assert.True(t, strings.HasSuffix(storedPath, ".jpg"), "extension should be lowercased")

	saved, err := os.ReadFile(storedPath)
	require.Nil(t, err)
	assert.Equal(t, []byte("fake image bytes"), saved)
}

func TestSaveImageGeneratesUniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.Nil(t, err)

	paths := map[string]bool{}
	for i := 0; i < 3; i++ {
		file, header := multipartFile(t, "street.png", []byte("fake image bytes"))

		storedPath, err := store.SaveImage("area_img", file, header)
		file.Close()
		require.Nil(t, err)

		assert.False(t, paths[storedPath], "stored names should never collide")
		paths[storedPath] = true
	}
}

func TestSaveImageRejectsNonImages(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.Nil(t, err)

	file, header := multipartFile(t, "notes.pdf", []byte("%PDF-1.4"))
	defer file.Close()

	_, err = store.SaveImage("area_img", file, header)
	assert.ErrorIs(t, err, ErrNotAnImage)
}
