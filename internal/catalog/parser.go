package catalog

import (
	"iter"
	"strings"
)

// Parse splits catalog text into blank-line separated blocks and yields one
// RawRecord per block. Each line of a block must be "key: value"; the split
// happens on the first colon so values may contain colons themselves.
//
// The sequence is lazy and stops at the first malformed line. Ranging over it
// again re-scans the same text and yields the same records.
func Parse(text string) iter.Seq2[RawRecord, error] {
	return func(yield func(RawRecord, error) bool) {
		text := strings.TrimPrefix(text, "\uFEFF")

		var (
			cur   RawRecord
			seen  map[string]bool
			open  bool
			block int
			line  int
		)

		flush := func() bool {
			if !open {
				return true
			}
			open = false
			rec := cur
			cur = RawRecord{}
			return yield(rec, nil)
		}

		for raw := range strings.Lines(text) {
			line++
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				if !flush() {
					return
				}
				continue
			}
			if isComment(trimmed) {
				continue
			}
			if !open {
				open = true
				block++
				cur = RawRecord{Block: block, Line: line}
				seen = make(map[string]bool)
			}

			key, value, reason := splitField(trimmed)
			if reason == "" && seen[canonicalField(key)] {
				reason = "duplicate field"
			}
			if reason != "" {
				yield(RawRecord{}, &MalformedRecordError{
					Block:  block,
					Line:   line,
					Text:   trimmed,
					Reason: reason,
				})
				return
			}
			seen[canonicalField(key)] = true
			cur.Fields = append(cur.Fields, Field{Key: key, Value: value, Line: line})
		}
		flush()
	}
}

// ParseAll collects Parse into a slice.
func ParseAll(text string) ([]RawRecord, error) {
	var out []RawRecord
	for rec, err := range Parse(text) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Markdown headings and HTML comments are allowed between and inside blocks.
func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "<!--")
}

func splitField(line string) (key, value, reason string) {
	s := line
	for _, bullet := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(s, bullet) {
			s = strings.TrimSpace(s[len(bullet):])
			break
		}
	}

	k, v, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", "missing ':' separator"
	}

	// "**Category:** value" leaves the closing emphasis on the value side.
	k = strings.TrimSpace(strings.Trim(strings.TrimSpace(k), "*_"))
	v = strings.TrimSpace(v)
	for _, mark := range []string{"**", "__"} {
		if strings.HasPrefix(v, mark) {
			v = strings.TrimSpace(v[len(mark):])
			break
		}
	}

	if k == "" {
		return "", "", "empty key"
	}
	return k, v, ""
}
