package form

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"sort"
	"strings"
)

// FileEntry is one file attachment ready to send.
type FileEntry struct {
	Filename    string
	Data        []byte
	ContentType string
}

// Body is an assembled multipart request body. Fields and Files are
// independent namespaces: the same name may appear in both, but at most
// once in each.
type Body struct {
	Fields map[string]string
	Files  map[string]FileEntry
}

// NewBody returns an empty Body.
func NewBody() *Body {
	return &Body{
		Fields: make(map[string]string),
		Files:  make(map[string]FileEntry),
	}
}

// Empty reports whether the body carries no fields and no files.
func (b *Body) Empty() bool {
	return b == nil || (len(b.Fields) == 0 && len(b.Files) == 0)
}

// Compose folds a sequence of items into a Body. A file item whose path is
// missing or unreadable becomes a diagnostic text field under the same name
// instead of failing the whole composition, so a broken input stays visible
// in the submitted form.
func Compose(items []Item) *Body {
	b := NewBody()

	for _, item := range items {
		switch item.Type {
		case TypeText:
			b.Fields[item.Name] = item.Value

		case TypeFile:
			if _, err := os.Stat(item.FilePath); err != nil {
				b.Fields[item.Name] = fmt.Sprintf("File not found: %s", item.FilePath)
				continue
			}
			data, err := os.ReadFile(item.FilePath)
			if err != nil {
				b.Fields[item.Name] = fmt.Sprintf("Error reading file: %v", err)
				continue
			}
			b.Files[item.Name] = FileEntry{
				Filename:    item.Filename,
				Data:        data,
				ContentType: item.ContentType,
			}

		case TypeBytes:
			if len(item.Data) == 0 {
				b.Fields[item.Name] = "Error: no data"
				continue
			}
			b.Files[item.Name] = FileEntry{
				Filename:    item.Filename,
				Data:        item.Data,
				ContentType: item.ContentType,
			}
		}
	}

	return b
}

// Merge combines bodies left to right. With overwriteDuplicates a colliding
// name takes the value from the last body that defined it. Without it the
// incoming key is renamed with a numeric suffix (key_1, key_2, ...), probing
// upward until an unused name is found; earlier entries keep their names.
// The rename applies per namespace. Nil and empty bodies are skipped.
func Merge(bodies []*Body, overwriteDuplicates bool) *Body {
	combined := NewBody()

	for _, b := range bodies {
		if b == nil {
			continue
		}
		for _, key := range sortedKeys(b.Fields) {
			name := key
			if _, exists := combined.Fields[key]; exists && !overwriteDuplicates {
				name = nextFreeKey(key, func(k string) bool {
					_, ok := combined.Fields[k]
					return ok
				})
			}
			combined.Fields[name] = b.Fields[key]
		}
		for _, key := range sortedKeys(b.Files) {
			name := key
			if _, exists := combined.Files[key]; exists && !overwriteDuplicates {
				name = nextFreeKey(key, func(k string) bool {
					_, ok := combined.Files[k]
					return ok
				})
			}
			combined.Files[name] = b.Files[key]
		}
	}

	return combined
}

// nextFreeKey probes key_1, key_2, ... until taken reports an unused name.
func nextFreeKey(key string, taken func(string) bool) string {
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s_%d", key, suffix)
		if !taken(candidate) {
			return candidate
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes the body as multipart/form-data and returns the encoded
// buffer together with the Content-Type header value carrying the boundary.
// Fields are written before files, each namespace in sorted name order so
// the payload is deterministic.
func (b *Body) Encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, name := range sortedKeys(b.Fields) {
		if err := writer.WriteField(name, b.Fields[name]); err != nil {
			return nil, "", err
		}
	}

	for _, name := range sortedKeys(b.Files) {
		entry := b.Files[name]
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(name), quoteEscaper.Replace(entry.Filename)))
		header.Set("Content-Type", entry.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(entry.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf, writer.FormDataContentType(), nil
}
