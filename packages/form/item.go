package form

import (
	"path/filepath"
	"strings"
)

// ItemType identifies the kind of a form item.
type ItemType string

const (
	// TypeText is a plain text field.
	TypeText ItemType = "text"
	// TypeFile is a field whose bytes are read from disk at composition time.
	TypeFile ItemType = "file"
	// TypeBytes is a field whose bytes are already in memory (e.g. a rendered image).
	TypeBytes ItemType = "bytes"
)

// Item is a single multipart form field. Items are immutable values; build
// them with the constructors and fold them into a Body with Compose.
type Item struct {
	Type        ItemType
	Name        string
	Value       string
	FilePath    string
	Filename    string
	ContentType string
	Data        []byte
}

// Text creates a plain text field with content type text/plain.
func Text(name, value string) Item {
	return TextTyped(name, value, "text/plain")
}

// TextTyped creates a text field with an explicit content type.
func TextTyped(name, value, contentType string) Item {
	return Item{
		Type:        TypeText,
		Name:        name,
		Value:       value,
		ContentType: contentType,
	}
}

// File creates a file field. The file is not opened here; its bytes are read
// when the item is composed into a Body. Filename defaults to the base of
// the path and the content type is detected from the file extension.
func File(name, path string) Item {
	return FileNamed(name, path, "", "")
}

// FileNamed creates a file field with explicit filename and content type.
// Empty values are filled in from the path.
func FileNamed(name, path, filename, contentType string) Item {
	if filename == "" {
		filename = filepath.Base(path)
	}
	if contentType == "" {
		contentType = ContentTypeForFile(path)
	}
	return Item{
		Type:        TypeFile,
		Name:        name,
		FilePath:    path,
		Filename:    filename,
		ContentType: contentType,
	}
}

// Bytes creates a field from in-memory bytes, typically an encoded image.
func Bytes(name string, data []byte, filename, contentType string) Item {
	if filename == "" {
		filename = "file.bin"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Item{
		Type:        TypeBytes,
		Name:        name,
		Data:        data,
		Filename:    filename,
		ContentType: contentType,
	}
}

var contentTypesByExt = map[string]string{
	".txt":  "text/plain",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".avi":  "video/avi",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// ContentTypeForFile returns the content type implied by the file extension,
// or application/octet-stream when the extension is unknown.
func ContentTypeForFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypesByExt[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
