package session

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Load decodes and validates a session. Unknown fields are rejected; a
// missing id is replaced by a fresh one.
func Load(r io.Reader) (*Session, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Session
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidSession, err)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Save encodes s as YAML.
func Save(w io.Writer, s *Session) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	return enc.Close()
}

// LoadFile loads the session stored at path.
func LoadFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// SaveFile writes s to path, replacing any existing file.
func SaveFile(path string, s *Session) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = Save(f, s); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
