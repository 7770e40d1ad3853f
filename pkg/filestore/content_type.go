package filestore

import (
	"path/filepath"
	"strings"
)

// Common MIME content types for file operations.
const (
	// Images.
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
	ContentTypeSVG  = "image/svg+xml"
	ContentTypeBMP  = "image/bmp"
	ContentTypeICO  = "image/x-icon"
	ContentTypeTIFF = "image/tiff"

	// Documents.
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
	ContentTypeCSS  = "text/css"
	ContentTypeJS   = "application/javascript"
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
	ContentTypeCSV  = "text/csv"

	// Archives.
	ContentTypeZIP  = "application/zip"
	ContentTypeTAR  = "application/x-tar"
	ContentTypeGZIP = "application/gzip"

	// Other.
	ContentTypeOctetStream = "application/octet-stream"
)

//nolint:gochecknoglobals // static extension lookup
var extContentTypes = map[string]string{
	".jpg":  ContentTypeJPEG,
	".jpeg": ContentTypeJPEG,
	".png":  ContentTypePNG,
	".gif":  ContentTypeGIF,
	".webp": ContentTypeWebP,
	".svg":  ContentTypeSVG,
	".bmp":  ContentTypeBMP,
	".ico":  ContentTypeICO,
	".tif":  ContentTypeTIFF,
	".tiff": ContentTypeTIFF,
	".pdf":  ContentTypePDF,
	".txt":  ContentTypeText,
	".html": ContentTypeHTML,
	".css":  ContentTypeCSS,
	".js":   ContentTypeJS,
	".json": ContentTypeJSON,
	".xml":  ContentTypeXML,
	".csv":  ContentTypeCSV,
	".zip":  ContentTypeZIP,
	".tar":  ContentTypeTAR,
	".gz":   ContentTypeGZIP,
}

// ContentTypeForName returns the MIME type implied by the file name extension,
// falling back to application/octet-stream.
func ContentTypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := extContentTypes[ext]; ok {
		return ct
	}
	return ContentTypeOctetStream
}
