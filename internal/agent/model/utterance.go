package model

import "fmt"

// ImageRef is an uploaded image: either ImageURL or ImageBytes.
// Consumers switch on the concrete type.
type ImageRef interface {
	isImageRef()
}

// ImageURL references a remotely hosted image.
type ImageURL string

// ImageBytes carries raw image bytes uploaded with the turn.
type ImageBytes struct {
	Data []byte
	MIME string
}

func (ImageURL) isImageRef()   {}
func (ImageBytes) isImageRef() {}

// UploadKeyPrefix marks cache keys that identify an uploaded file rather than a URL.
const UploadKeyPrefix = "upload:"

// FileRef identifies an uploaded file. Digest distinguishes two uploads that
// share a name.
type FileRef struct {
	Name   string
	Size   int64
	Digest string
}

// CacheKey is the normalized source identity of the uploaded file.
func (f FileRef) CacheKey() string {
	return fmt.Sprintf("%s%s#%d:%s", UploadKeyPrefix, f.Name, f.Size, f.Digest)
}

// Utterance is one user turn. Treat as immutable once built.
type Utterance struct {
	Text   string
	Images []ImageRef
	PDF    *FileRef
	// URLs optionally carries links extracted by an earlier stage; when empty
	// the classifier extracts them from Text.
	URLs []string
}

// HasImages reports whether at least one image is attached.
func (u Utterance) HasImages() bool {
	return len(u.Images) > 0
}

// HasPDF reports whether a PDF upload is attached.
func (u Utterance) HasPDF() bool {
	return u.PDF != nil
}
