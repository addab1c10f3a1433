package uploads

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raksha-app/raksha/utils"
)

// MaxImageSize caps report images at 5MB.
const MaxImageSize = 5 << 20

var ErrNotAnImage = errors.New("only image files are allowed")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Store writes uploaded report images to a local directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := utils.CreateDirIfNotExist(dir); err != nil {
		return nil, err
	}

	return &Store{dir: dir}, nil
}

// SaveImage persists an uploaded image under a collision-proof name and
// returns the stored path.
func (s *Store) SaveImage(fieldName string, file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", ErrNotAnImage
	}

	if header.Size > MaxImageSize {
		return "", fmt.Errorf("image exceeds the %v byte limit", MaxImageSize)
	}

	fileName := fmt.Sprintf("%v-%v-%v%v", fieldName, time.Now().UnixNano(), rand.Intn(1e9), ext)
	destPath := filepath.Join(s.dir, fileName)

	dest, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer dest.Close()

	if _, err := io.Copy(dest, io.LimitReader(file, MaxImageSize)); err != nil {
		return "", err
	}

	return destPath, nil
}
