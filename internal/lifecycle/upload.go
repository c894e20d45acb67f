package lifecycle

import (
	"fmt"
	"mime"
	"strings"

	"clubsite/internal/domain"
)

// MaxUploadBytes is the size ceiling for a single media upload.
const MaxUploadBytes int64 = 10 << 20

// RejectionReason tells why an upload was refused.
type RejectionReason string

const (
	RejectUnsupportedType RejectionReason = "unsupported_type"
	RejectTooLarge        RejectionReason = "too_large"
	RejectEmpty           RejectionReason = "empty"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/avif":    {},
	"image/svg+xml": {},
}

// UploadRejection is returned by ValidateUpload. It matches domain.ErrValidation.
type UploadRejection struct {
	Reason      RejectionReason
	ContentType string
	Size        int64
}

func (e *UploadRejection) Error() string {
	switch e.Reason {
	case RejectTooLarge:
		return fmt.Sprintf("file is %d bytes, limit is %d", e.Size, MaxUploadBytes)
	case RejectEmpty:
		return "file is empty"
	default:
		return fmt.Sprintf("content type %q is not an allowed image type", e.ContentType)
	}
}

func (e *UploadRejection) Is(target error) bool {
	return target == domain.ErrValidation
}

// NormalizeContentType lower-cases contentType and drops its parameters.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// ValidateUpload checks the declared content type against the image
// allow-list and the size against MaxUploadBytes. The body is not sniffed.
func ValidateUpload(contentType string, sizeBytes int64) error {
	ct := NormalizeContentType(contentType)
	if _, ok := allowedImageTypes[ct]; !ok {
		return &UploadRejection{Reason: RejectUnsupportedType, ContentType: ct, Size: sizeBytes}
	}
	if sizeBytes <= 0 {
		return &UploadRejection{Reason: RejectEmpty, ContentType: ct, Size: sizeBytes}
	}
	if sizeBytes > MaxUploadBytes {
		return &UploadRejection{Reason: RejectTooLarge, ContentType: ct, Size: sizeBytes}
	}
	return nil
}
