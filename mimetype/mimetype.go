package mimetype

import (
	"maps"
	"strings"
)

// Table maps a declared media type to an extension without leading dot.
type Table map[string]string

var defaultTable = Table{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"application/vnd.ms-excel":                                             "xls",
	"application/vnd.ms-excel.sheet.macroEnabled.12":                       "xlsm",
	"application/vnd.ms-excel.template.macroEnabled.12":                    "xltm",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.template": "xltx",
	"application/vnd.ms-excel.addin.macroEnabled.12":                       "xlam",
	"application/vnd.ms-excel.sheet.binary.macroEnabled.12":                "xlsb",
	"application/vnd.ms-excel.sheet":                                       "xls",
	"application/vnd.oasis.opendocument.spreadsheet":                       "ods",
	"application/pdf":               "pdf",
	"image/jpeg":                    "jpg",
	"image/png":                     "png",
	"image/gif":                     "gif",
	"image/tiff":                    "tiff",
	"image/bmp":                     "bmp",
	"text/plain":                    "txt",
	"text/html":                     "html",
	"text/css":                      "css",
	"text/javascript":               "js",
	"application/json":              "json",
	"application/xml":               "xml",
	"application/zip":               "zip",
	"application/x-tar":             "tar",
	"application/x-gzip":            "gz",
	"audio/mpeg":                    "mp3",
	"audio/wav":                     "wav",
	"audio/ogg":                     "ogg",
	"video/mp4":                     "mp4",
	"video/x-msvideo":               "avi",
	"video/x-matroska":              "mkv",
	"application/vnd.ms-powerpoint": "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/vnd.ms-word": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// DefaultTable returns a copy of the built-in mapping covering common
// document, spreadsheet, image, text, archive, audio and video types.
func DefaultTable() Table {
	return maps.Clone(defaultTable)
}

// Merge returns a new table holding t overlaid with extra. Extensions in
// extra are lowercased and stripped of a leading dot. Neither input is
// modified.
func (t Table) Merge(extra map[string]string) Table {
	out := maps.Clone(t)
	if out == nil {
		out = Table{}
	}
	for mediaType, ext := range extra {
		out[mediaType] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	return out
}

// Resolver resolves extensions against a read-only table. The zero value is
// not usable; construct one with NewResolver.
type Resolver struct {
	table   Table
	reverse map[string]string
}

// NewResolver creates a Resolver over a private copy of table. A nil table
// selects DefaultTable.
func NewResolver(table Table) *Resolver {
	if table == nil {
		table = defaultTable
	}
	r := &Resolver{
		table:   maps.Clone(table),
		reverse: make(map[string]string, len(table)),
	}
	for mediaType, ext := range r.table {
		// Several types share an extension (xls); keep the smallest so the
		// reverse lookup is deterministic.
		if prev, ok := r.reverse[ext]; !ok || mediaType < prev {
			r.reverse[ext] = mediaType
		}
	}
	return r
}

// Extension returns the extension for declared. It never fails.
func (r *Resolver) Extension(declared string) string {
	if ext, ok := r.table[declared]; ok {
		return ext
	}
	return declared[strings.LastIndex(declared, "/")+1:]
}

// MediaType performs the reverse lookup used when serving an artifact back.
// The second return value is false when no table entry produces ext.
func (r *Resolver) MediaType(ext string) (string, bool) {
	mediaType, ok := r.reverse[ext]
	return mediaType, ok
}

// Len returns the number of table entries.
func (r *Resolver) Len() int {
	return len(r.table)
}
