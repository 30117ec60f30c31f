package file

import "os"

// Config holds settings for the JSON file store
type Config struct {
	// Path is the location of the students document
	Path string

	// FileMode is applied to newly written documents
	FileMode os.FileMode
}

// DefaultConfig returns sensible defaults for the file store
func DefaultConfig() Config {
	return Config{
		Path:     "data/students.json",
		FileMode: 0o644,
	}
}
