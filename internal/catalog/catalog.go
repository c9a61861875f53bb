package catalog

// Entry is one validated catalog record describing a requestable service.
type Entry struct {
	Key              string            `json:"key"`
	ID               string            `json:"id,omitempty"`
	Topic            string            `json:"topic,omitempty"`
	Category         string            `json:"category" validate:"required"`
	Subcategory      string            `json:"subcategory" validate:"required"`
	BriefDescription string            `json:"brief_description" validate:"required"`
	Description      string            `json:"description,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
	Block            int               `json:"block"`
}

// Field is a single "key: value" pair as written in the source.
type Field struct {
	Key   string
	Value string
	Line  int
}

// RawRecord is the unvalidated content of one block (or CSV/YAML row).
type RawRecord struct {
	Block  int
	Line   int
	Fields []Field
}

// Get returns the value of the first field whose key normalizes to name.
func (r RawRecord) Get(name string) (string, bool) {
	want := normalizeKey(name)
	for _, f := range r.Fields {
		if normalizeKey(f.Key) == want {
			return f.Value, true
		}
	}
	return "", false
}

type Format string

const (
	FormatBlocks Format = "blocks"
	FormatCSV    Format = "csv"
	FormatYAML   Format = "yaml"
)

// ListQuery selects a page of entries. AfterKey, when set, takes
// precedence over Offset.
type ListQuery struct {
	Category string
	Limit    int
	Offset   int
	AfterKey string
}
