package request

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is an uploaded file attached to a submission. Either Data is set, or
// Path points at a file read when the envelope is built.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
	Path        string
}

// Bytes returns the file contents, reading Path when Data is empty.
func (f File) Bytes() ([]byte, error) {
	if f.Data != nil {
		return f.Data, nil
	}
	if strings.TrimSpace(f.Path) == "" {
		return nil, fmt.Errorf("request: file %q has no content", f.Filename)
	}
	return os.ReadFile(f.Path)
}

// Name returns the filename sent in the multipart part.
func (f File) Name() string {
	if name := strings.TrimSpace(f.Filename); name != "" {
		return name
	}
	if f.Path != "" {
		return filepath.Base(f.Path)
	}
	return "upload"
}

// Submission carries raw values captured from the triggering element. Values
// are kept as entered; parsing happens in the Builder.
type Submission struct {
	Values map[string]string
	Files  map[string]File
}

// NewSubmission returns a submission seeded with the provided values.
func NewSubmission(values map[string]string) Submission {
	sub := Submission{Values: make(map[string]string, len(values))}
	for key, value := range values {
		if name := strings.TrimSpace(key); name != "" {
			sub.Values[name] = value
		}
	}
	return sub
}

// With returns a copy of the submission with the value set.
func (s Submission) With(name, value string) Submission {
	out := s.clone()
	out.Values[strings.TrimSpace(name)] = value
	return out
}

// WithFile returns a copy of the submission with the file attached.
func (s Submission) WithFile(name string, file File) Submission {
	out := s.clone()
	out.Files[strings.TrimSpace(name)] = file
	return out
}

// Value returns the raw value for a field.
func (s Submission) Value(name string) string {
	if s.Values == nil {
		return ""
	}
	return s.Values[name]
}

// File returns the attached file for a field.
func (s Submission) File(name string) (File, bool) {
	if s.Files == nil {
		return File{}, false
	}
	f, ok := s.Files[name]
	return f, ok
}

func (s Submission) clone() Submission {
	out := Submission{
		Values: make(map[string]string, len(s.Values)+1),
		Files:  make(map[string]File, len(s.Files)+1),
	}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	for k, v := range s.Files {
		out.Files[k] = v
	}
	return out
}
