package storage

import (
	"regexp"
)

// KeyPrefix is prepended to every upload key.
const KeyPrefix = "uploads/"

var unsafeKeyChars = regexp.MustCompile(`[^\w.-]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9_.-] with an underscore.
func SanitizeFilename(name string) string {
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// UploadKey returns the object key for a new upload: uploads/<fileID>/<sanitized name>
func UploadKey(fileID, originalFilename string) string {
	return KeyPrefix + fileID + "/" + SanitizeFilename(originalFilename)
}
