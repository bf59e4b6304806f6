// Package attachment gates uploaded policy files and converts them to and
// from the base64 representation embedded in the policy record.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/psgpraveen/PolicyPilot/internal/store"
)

// MaxSize is the largest accepted upload, 5 MiB.
const MaxSize = 5 * 1024 * 1024

var (
	ErrFileType     = errors.New("invalid file type, allowed: PDF, JPG, PNG")
	ErrFileTooLarge = fmt.Errorf("file exceeds the %d byte limit", MaxSize)
)

// allowedTypes is the fixed content-type allow-list for policy attachments.
var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// Accept gates an upload by declared content type and size and produces the
// storable record. The returned record embeds the encoded content; the raw
// bytes are not retained.
func Accept(data []byte, contentType, filename string) (*store.Attachment, error) {
	mediaType := normalize(contentType)
	if !allowedTypes[mediaType] {
		return nil, ErrFileType
	}
	if int64(len(data)) > MaxSize {
		return nil, ErrFileTooLarge
	}
	return &store.Attachment{
		Data:        Encode(data),
		ContentType: mediaType,
		Filename:    filename,
		Size:        int64(len(data)),
	}, nil
}

// Encode converts raw file bytes to the text form stored inline in the
// policy record. Decode is its exact inverse.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode recovers the original bytes from a stored attachment body.
func Decode(stored string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("corrupt attachment body: %w", err)
	}
	return data, nil
}

// normalize lowercases the declared type and drops any media type
// parameters such as "; charset=...".
func normalize(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
