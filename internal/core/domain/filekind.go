package domain

import (
	"path/filepath"
	"strings"
)

// FileKind identifies an ingestible file format.
type FileKind string

// Supported file kinds.
const (
	FileKindPDF    FileKind = "pdf"
	FileKindDOCX   FileKind = "docx"
	FileKindTXT    FileKind = "txt"
	FileKindCSV    FileKind = "csv"
	FileKindImage  FileKind = "image"
	FileKindSQLite FileKind = "sqlite"
)

// UnknownIcon is shown for extensions without a FileKind.
const UnknownIcon = "❓"

var extKinds = map[string]FileKind{
	".pdf":  FileKindPDF,
	".docx": FileKindDOCX,
	".txt":  FileKindTXT,
	".csv":  FileKindCSV,
	".jpg":  FileKindImage,
	".jpeg": FileKindImage,
	".png":  FileKindImage,
	".db":   FileKindSQLite,
}

// ParseFileKind maps an extension (with or without the leading dot) to a
// FileKind. Matching is case-insensitive.
func ParseFileKind(ext string) (FileKind, error) {
	norm := NormaliseExt(ext)
	if k, ok := extKinds[norm]; ok {
		return k, nil
	}
	return "", &UnsupportedFileTypeError{Ext: norm}
}

// FileKindForPath maps a file path to its FileKind by extension.
func FileKindForPath(path string) (FileKind, error) {
	return ParseFileKind(filepath.Ext(path))
}

// NormaliseExt lower-cases an extension and ensures a leading dot.
func NormaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsValid returns true if the kind is recognised.
func (k FileKind) IsValid() bool {
	switch k {
	case FileKindPDF, FileKindDOCX, FileKindTXT, FileKindCSV, FileKindImage, FileKindSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k FileKind) String() string {
	return string(k)
}

// Icon returns the display icon for the kind.
func (k FileKind) Icon() string {
	switch k {
	case FileKindPDF:
		return "📄"
	case FileKindDOCX:
		return "📝"
	case FileKindTXT:
		return "📃"
	case FileKindImage:
		return "🖼️"
	case FileKindCSV:
		return "📊"
	case FileKindSQLite:
		return "🗄️"
	default:
		return UnknownIcon
	}
}

// IconForExt returns the icon for an extension, or UnknownIcon.
func IconForExt(ext string) string {
	k, err := ParseFileKind(ext)
	if err != nil {
		return UnknownIcon
	}
	return k.Icon()
}

// AllFileKinds returns every supported kind.
func AllFileKinds() []FileKind {
	return []FileKind{
		FileKindPDF,
		FileKindDOCX,
		FileKindTXT,
		FileKindCSV,
		FileKindImage,
		FileKindSQLite,
	}
}

// SupportedExtensions returns the accepted extensions in sorted order.
func SupportedExtensions() []string {
	return []string{".csv", ".db", ".docx", ".jpeg", ".jpg", ".pdf", ".png", ".txt"}
}

// FileIDFromPath returns the filename without directory or extension.
func FileIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
