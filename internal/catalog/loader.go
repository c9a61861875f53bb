package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatFromPath picks the input format from a file extension. Anything
// that is not CSV or YAML is read as block text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatBlocks
	}
}

// LoadFile reads, validates and indexes the catalog at path.
func LoadFile(path string) (*Index, error) {
	return LoadFileAs(path, FormatFromPath(path))
}

// LoadFileAs is LoadFile with an explicit format.
func LoadFileAs(path string, format Format) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	idx, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return idx, nil
}

// Load runs parse, validate and index over r. The first error aborts.
func Load(r io.Reader, format Format) (*Index, error) {
	recs, err := ReadRecords(r, format)
	if err != nil {
		return nil, err
	}
	entries, err := ValidateAll(recs)
	if err != nil {
		return nil, err
	}
	return NewIndex(entries)
}

// ReadRecords decodes r into raw records without validating them.
func ReadRecords(r io.Reader, format Format) ([]RawRecord, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatYAML:
		return readYAML(r)
	case FormatBlocks, "":
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return ParseAll(string(b))
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

var requiredFields = []string{fieldCategory, fieldSubcategory, fieldBriefDescription}

func readCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, csvError(err, 0)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	have := make(map[string]bool, len(header))
	for i, col := range header {
		name := canonicalField(col)
		if have[name] {
			line, _ := cr.FieldPos(i)
			return nil, &MalformedRecordError{Line: line, Text: col, Reason: "duplicate column"}
		}
		have[name] = true
	}
	for _, name := range requiredFields {
		if !have[name] {
			return nil, &MissingFieldError{Field: name}
		}
	}

	var out []RawRecord
	for row := 1; ; row++ {
		cols, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, csvError(err, row)
		}
		line, _ := cr.FieldPos(0)
		rec := RawRecord{Block: row, Line: line}
		for i, col := range header {
			rec.Fields = append(rec.Fields, Field{Key: strings.TrimSpace(col), Value: cols[i], Line: line})
		}
		out = append(out, rec)
	}
}

func csvError(err error, row int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedRecordError{Block: row, Line: pe.Line, Text: pe.Err.Error(), Reason: "invalid csv row"}
	}
	return fmt.Errorf("read csv: %w", err)
}

func readYAML(r io.Reader) ([]RawRecord, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, &MalformedRecordError{Line: root.Line, Text: root.Tag, Reason: "catalog must be a list of records"}
	}

	out := make([]RawRecord, 0, len(root.Content))
	for i, item := range root.Content {
		block := i + 1
		if item.Kind != yaml.MappingNode {
			return nil, &MalformedRecordError{Block: block, Line: item.Line, Text: item.Value, Reason: "record must be a mapping"}
		}
		rec := RawRecord{Block: block, Line: item.Line}
		seen := make(map[string]bool, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			k, v := item.Content[j], item.Content[j+1]
			if v.Kind != yaml.ScalarNode {
				return nil, &MalformedRecordError{Block: block, Line: v.Line, Text: k.Value, Reason: "value must be a scalar"}
			}
			nk := canonicalField(k.Value)
			if nk == "" {
				return nil, &MalformedRecordError{Block: block, Line: k.Line, Text: k.Value, Reason: "empty key"}
			}
			if seen[nk] {
				return nil, &MalformedRecordError{Block: block, Line: k.Line, Text: k.Value, Reason: "duplicate field"}
			}
			seen[nk] = true
			rec.Fields = append(rec.Fields, Field{Key: k.Value, Value: v.Value, Line: k.Line})
		}
		out = append(out, rec)
	}
	return out, nil
}
