// Package catalog provides the catalog adapters: quotation files on disk, the
// in-memory store searches run against, and a watcher that reports file edits.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/ports"
)

// Ensure FileSource implements the interface.
var _ ports.CatalogSource = (*FileSource)(nil)

// record is one quotation as written in a catalog file.
type record struct {
	ID        string `yaml:"id"         json:"id"         toml:"id"`
	FirstName string `yaml:"first_name" json:"first_name" toml:"first_name"`
	LastName  string `yaml:"last_name"  json:"last_name"  toml:"last_name"`
	Bio       string `yaml:"bio"        json:"bio"        toml:"bio"`
	Source    string `yaml:"source"     json:"source"     toml:"source"`
	Topic     string `yaml:"topic"      json:"topic"      toml:"topic"`
	Text      string `yaml:"text"       json:"text"       toml:"text"`
}

type document struct {
	Quotations []record `yaml:"quotations" json:"quotations" toml:"quotations"`
}

// Formats lists the file extensions FileSource understands.
var Formats = []string{".yaml", ".yml", ".json", ".toml"}

// FileSource loads quotations from a YAML, JSON or TOML file. The format
// follows the file extension.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements ports.CatalogSource.
func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.path)
}

// Path returns the file the source reads.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and decodes the file. A missing or unreadable file is
// unavailable; malformed content or a record without text is a validation
// error.
func (s *FileSource) Load(ctx context.Context) (domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, fs.ErrNotExist) {
			reason = "file does not exist"
		}

		return nil, domain.NewUnavailableError(s.Name(), reason)
	}

	catalog, err := Decode(filepath.Ext(s.path), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}

	return catalog, nil
}

// Decode parses catalog data in the format named by ext (".yaml", ".json",
// ".toml"). Records without an ID get domain.StableID.
func Decode(ext string, data []byte) (domain.Catalog, error) {
	var (
		doc document
		err error
	)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		err = dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()

		err = dec.Decode(&doc)
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&doc)
	default:
		return nil, domain.NewValidationErrorWithValue("format", "unsupported catalog format", ext)
	}

	if err != nil {
		return nil, domain.NewValidationError("catalog", err.Error())
	}

	return toCatalog(doc.Quotations)
}

func toCatalog(records []record) (domain.Catalog, error) {
	catalog := make(domain.Catalog, 0, len(records))

	for i, r := range records {
		if strings.TrimSpace(r.Text) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("quotations[%d].text", i), "cannot be empty")
		}

		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = domain.StableID(r.FirstName, r.LastName, r.Text)
		}

		catalog = append(catalog, &domain.Quotation{
			ID:        id,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Bio:       r.Bio,
			Source:    r.Source,
			Topic:     r.Topic,
			Text:      r.Text,
		})
	}

	return catalog, nil
}
