package utils

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the lower-case extension without the dot. URLs are
// judged by their path, ignoring any query string.
func GetFileExtension(filename string) string {
	if u, err := url.Parse(filename); err == nil && u.Scheme != "" && u.Host != "" {
		filename = path.Base(u.Path)
	}
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tif": true, "tiff": true, "webp": true,
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	return imageExts[GetFileExtension(filename)]
}

// IsPDFFile checks if a file has a .pdf extension
func IsPDFFile(filename string) bool {
	return GetFileExtension(filename) == "pdf"
}

// IsDocumentFile reports whether the file can serve as a base document.
func IsDocumentFile(filename string) bool {
	return IsImageFile(filename) || IsPDFFile(filename)
}

// GenerateOutputFilename builds dir/<name>.<format>. An empty name falls back
// to the input's base name with suffix appended.
func GenerateOutputFilename(inputFile, outputDir, name, suffix, format string) string {
	if name == "" {
		baseName := filepath.Base(inputFile)
		name = strings.TrimSuffix(baseName, filepath.Ext(baseName)) + suffix
	} else {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name = SanitizeFilename(name)

	if format == "" {
		format = "png"
	}

	return filepath.Join(outputDir, fmt.Sprintf("%s.%s", name, format))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove leading/trailing spaces and dots
	result = strings.Trim(result, " .")

	return result
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
