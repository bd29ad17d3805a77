// Package attachments validates and caches the PDF documents (orders and cause
// lists) downloaded from the portals.
package attachments

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

var (
	ErrNotAPdf        = errors.New("content is not a pdf")
	ErrNotUploadedYet = errors.New("document has not been uploaded yet")
	ErrSessionExpired = errors.New("portal session expired")
	ErrNotFound       = errors.New("attachment not found")
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	pdfMagic   = []byte("%PDF")
	notUpload  = []byte("not uploaded")
	timeLayout = "20060102_150405"
)

// StripBOM removes a leading UTF-8 byte order mark, some portal servers prepend
// one to every response including binary ones.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, utf8BOM)
}

// IsPDF reports whether content starts with the PDF magic once any BOM is removed.
func IsPDF(content []byte) bool {
	return bytes.HasPrefix(StripBOM(content), pdfMagic)
}

// NotUploaded reports whether content is the portal's "not uploaded" notice.
func NotUploaded(content []byte) bool {
	return bytes.Contains(bytes.ToLower(content), notUpload)
}

// Validate returns the BOM-stripped document or classifies why content is not one.
func Validate(content []byte) ([]byte, error) {
	stripped := StripBOM(content)
	if bytes.HasPrefix(stripped, pdfMagic) {
		return stripped, nil
	}
	if NotUploaded(stripped) {
		return nil, ErrNotUploadedYet
	}
	return nil, ErrNotAPdf
}

// ShortHash is the first 12 hex digits of md5(ref), used in display filenames.
func ShortHash(ref string) string {
	sum := md5.Sum([]byte(ref))
	return hex.EncodeToString(sum[:])[:12]
}

// Key derives a cache key from the document reference and the time it was
// fetched, the same reference fetched twice gets two keys.
func Key(ref string, now time.Time) string {
	sum := md5.Sum([]byte(ref + strconv.FormatInt(now.UnixNano(), 10)))
	return hex.EncodeToString(sum[:]) + "_" + now.Format(timeLayout)
}

// OrderFilename is the display name for an order without a filename of its own.
func OrderFilename(ref string, now time.Time) string {
	return "order_" + ShortHash(ref) + "_" + now.Format(timeLayout) + ".pdf"
}

// Attachment is a cached document.
type Attachment struct {
	Key      string    `json:"key"`
	Filename string    `json:"filename"`
	Content  []byte    `json:"-"`
	Created  time.Time `json:"created"`
}

// Epoch is the attachment set of the live search.
type Epoch struct {
	ID      string    `json:"epoch_id"`
	Keys    []string  `json:"keys"`
	Created time.Time `json:"created"`
}
