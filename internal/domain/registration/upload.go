package registration

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxScreenshotBytes = 5_000_000

var AllowedScreenshotTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Upload is a chosen payment screenshot held in memory until submission.
type Upload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"`
}

// NewUpload wraps raw bytes, sniffing the content type from the data itself.
func NewUpload(filename string, content []byte) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: detectType(content),
		Size:        int64(len(content)),
		Content:     content,
	}
}

// OpenUpload reads a screenshot from disk.
func OpenUpload(path string) (*Upload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}

	return NewUpload(filepath.Base(path), b), nil
}

// UploadFromFileHeader reads a multipart file part. Size comes from the header
// so an oversized file still reports its real size to validation.
func UploadFromFileHeader(fh *multipart.FileHeader) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open screenshot part: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read screenshot part: %w", err)
	}

	u := NewUpload(fh.Filename, b)
	if fh.Size > 0 {
		u.Size = fh.Size
	}
	return u, nil
}

func (u *Upload) allowedType() bool {
	for _, t := range AllowedScreenshotTypes {
		if u.ContentType == t {
			return true
		}
	}
	return false
}

func detectType(content []byte) string {
	mt := mimetype.Detect(content).String()
	// drop parameters such as charset
	mt, _, _ = strings.Cut(mt, ";")
	return strings.TrimSpace(mt)
}
