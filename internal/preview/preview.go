// Package preview classifies files by extension so the UI can decide
// how to present them. Classification never opens the file; only the
// text snippet helper reads from disk.
package preview

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind describes how a file can be previewed
type Kind int

const (
	KindOpaque Kind = iota
	KindImage
	KindAnimation
	KindVideo
	KindAudio
	KindText
)

const (
	// maxSnippetFileSize is the largest text file worth reading for a preview
	maxSnippetFileSize = 50 * 1024
	// maxSnippetRunes bounds the snippet shown in the info panel
	maxSnippetRunes = 1000
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindAnimation:
		return "Animation"
	case KindVideo:
		return "Video"
	case KindAudio:
		return "Audio"
	case KindText:
		return "Text"
	default:
		return "File"
	}
}

// Icon returns an emoji for UI display
func (k Kind) Icon() string {
	switch k {
	case KindImage:
		return "🖼️"
	case KindAnimation:
		return "🎞️"
	case KindVideo:
		return "🎬"
	case KindAudio:
		return "🎵"
	case KindText:
		return "📄"
	default:
		return "📦"
	}
}

// Previewable reports whether the UI can show any content-derived
// detail for this kind beyond name and size.
func (k Kind) Previewable() bool {
	return k != KindOpaque
}

// KindForPath classifies a file by its extension alone
func KindForPath(path string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "png", "jpg", "jpeg", "bmp", "ico", "webp", "tiff", "tif":
		return KindImage
	case "gif":
		return KindAnimation
	case "mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v", "mpeg", "mpg":
		return KindVideo
	case "mp3", "wav", "flac", "aac", "ogg", "wma", "m4a", "opus":
		return KindAudio
	case "txt", "md", "rs", "py", "js", "ts", "json", "xml", "html", "css", "toml",
		"yaml", "yml", "ini", "cfg", "log", "csv", "c", "cpp", "h", "java",
		"go", "rb", "php", "sh", "bat", "ps1":
		return KindText
	default:
		return KindOpaque
	}
}

// TextSnippet reads the beginning of a small text file for display.
// Returns an empty string when the file is not text, too large, or
// unreadable; the caller treats that as "no preview".
func TextSnippet(path string, size int64) string {
	if KindForPath(path) != KindText || size > maxSnippetFileSize {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	runes := []rune(string(data))
	if len(runes) > maxSnippetRunes {
		runes = runes[:maxSnippetRunes]
	}
	return string(runes)
}
