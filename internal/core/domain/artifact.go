package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PDFMimeType is the MIME type handed to the transfer collaborator
const PDFMimeType = "application/pdf"

// DefaultDocumentName is the well-known filename of the current document
const DefaultDocumentName = "scannedDocument.pdf"

// ArtifactReference points at the persisted bytes of the current document
type ArtifactReference struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"created_at"`
}

// URI returns the file URI of the artifact
func (a ArtifactReference) URI() string {
	return "file://" + a.Path
}

// Manifest records the current artifact and how it was laid out
type Manifest struct {
	BuildID  string            `json:"build_id"`
	Artifact ArtifactReference `json:"artifact"`
	PageSize PageSize          `json:"page_size"`
	Pages    []Page            `json:"pages"`
}

// PageCount returns the number of pages in the recorded document
func (m Manifest) PageCount() int {
	return len(m.Pages)
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	multiHyphen  = regexp.MustCompile(`-+`)
)

// GenerateSlug creates a filename-friendly slug from a title
// Converts "Lab Report 3" -> "lab-report-3"
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return multiHyphen.ReplaceAllString(slug, "-")
}

// DocumentFilename turns a user supplied title into a .pdf filename.
// An empty title yields DefaultDocumentName.
func DocumentFilename(title string) string {
	title = strings.TrimSuffix(strings.TrimSpace(title), ".pdf")
	if strings.EqualFold(title, strings.TrimSuffix(DefaultDocumentName, ".pdf")) {
		return DefaultDocumentName
	}
	slug := GenerateSlug(title)
	if slug == "" {
		return DefaultDocumentName
	}
	return fmt.Sprintf("%s.pdf", slug)
}
