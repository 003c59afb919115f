package manifest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

// Document is a manifest held as its original bytes plus the decoded view.
// Edits splice the original text so unrelated content is preserved exactly.
type Document struct {
	data     []byte
	manifest Manifest
}

// Parse decodes data into a Document.
func Parse(data []byte) (*Document, error) {
	m, err := Decode(data)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Document{data: buf, manifest: m}, nil
}

// Bytes returns a copy of the current text.
func (d *Document) Bytes() []byte {
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

func (d *Document) Manifest() Manifest { return d.manifest }

// PinDependency returns a copy of d where the path declaration of dependency
// name is replaced by version. The receiver is not modified. The boolean is
// false when name is not a local dependency, in which case the returned
// document is d itself.
func (d *Document) PinDependency(name, version string) (*Document, bool, error) {
	dep, ok := d.manifest.Dependencies[name]
	if !ok || !dep.Local {
		return d, false, nil
	}

	entry, err := locateDependency(d.data, name)
	if err != nil {
		return nil, false, err
	}
	if entry.path == nil {
		return nil, false, fmt.Errorf("%w: path of %q not found in manifest text", ErrUnsupportedLayout, name)
	}

	quoted := quoteString(version)
	var edits []splice
	if entry.version == nil {
		edits = append(edits, splice{span: entry.path.keyValue, text: "version = " + quoted})
	} else {
		edits = append(edits, splice{span: entry.version.value, text: quoted})
		if entry.inline {
			edits = append(edits, splice{span: inlineRemoval(d.data, entry.path.keyValue)})
		} else {
			edits = append(edits, splice{span: lineOf(d.data, entry.path.keyValue)})
		}
	}

	out := applySplices(d.data, edits)
	next, err := Parse(out)
	if err != nil {
		return nil, false, fmt.Errorf("%w: rewritten manifest does not parse: %v", ErrUnsupportedLayout, err)
	}
	pinned := next.manifest.Dependencies[name]
	if pinned.Local || pinned.Version != version {
		return nil, false, fmt.Errorf("%w: rewrite of %q did not take effect", ErrUnsupportedLayout, name)
	}
	return next, true, nil
}

type span struct {
	start int
	end   int
}

type located struct {
	keyValue span // key through end of value
	value    span
}

type dependencyEntry struct {
	inline  bool
	path    *located
	version *located
}

// locateDependency finds the byte positions of the path and version entries
// of one dependency. Three layouts are recognized:
//
//	[dependencies]
//	name = { path = "...", version = "..." }
//	name.path = "..."
//
//	[dependencies.name]
//	path = "..."
func locateDependency(data []byte, name string) (dependencyEntry, error) {
	var entry dependencyEntry
	var p unstable.Parser
	p.Reset(data)

	var table []string
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			table = keyParts(expr.Key())
		case unstable.ArrayTable:
			table = append([]string{"[[]]"}, keyParts(expr.Key())...)
		case unstable.KeyValue:
			key := make([]string, 0, len(table)+2)
			key = append(key, table...)
			key = append(key, keyParts(expr.Key())...)
			value := expr.Value()

			switch {
			case len(key) == 2 && key[0] == "dependencies" && key[1] == name:
				if value.Kind != unstable.InlineTable {
					continue
				}
				entry.inline = true
				it := value.Children()
				for it.Next() {
					kv := it.Node()
					if kv.Kind != unstable.KeyValue {
						continue
					}
					inner := keyParts(kv.Key())
					if len(inner) != 1 {
						continue
					}
					if err := entry.record(data, inner[0], kv.Value()); err != nil {
						return entry, err
					}
				}
			case len(key) == 3 && key[0] == "dependencies" && key[1] == name:
				if err := entry.record(data, key[2], value); err != nil {
					return entry, err
				}
			}
		}
	}
	if err := p.Error(); err != nil {
		return entry, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	return entry, nil
}

func (e *dependencyEntry) record(data []byte, key string, value *unstable.Node) error {
	if key != "path" && key != "version" {
		return nil
	}
	if value.Kind != unstable.String {
		return fmt.Errorf("%w: %s must be a string", ErrUnsupportedLayout, key)
	}
	loc, err := locateKeyValue(data, value)
	if err != nil {
		return err
	}
	if key == "path" {
		e.path = &loc
	} else {
		e.version = &loc
	}
	return nil
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// locateKeyValue derives the span of `key = "value"` from the value node by
// walking back over the separator and the last key segment.
func locateKeyValue(data []byte, value *unstable.Node) (located, error) {
	v, err := stringSpan(data, value)
	if err != nil {
		return located{}, err
	}

	i := v.start
	i = skipBackBlank(data, i)
	if i == 0 || data[i-1] != '=' {
		return located{}, fmt.Errorf("%w: expected '=' before value at offset %d", ErrUnsupportedLayout, v.start)
	}
	i = skipBackBlank(data, i-1)
	if i == 0 {
		return located{}, fmt.Errorf("%w: missing key before offset %d", ErrUnsupportedLayout, v.start)
	}

	switch q := data[i-1]; q {
	case '"', '\'':
		open := bytes.LastIndexByte(data[:i-1], q)
		if open < 0 {
			return located{}, fmt.Errorf("%w: unterminated quoted key before offset %d", ErrUnsupportedLayout, v.start)
		}
		i = open
	default:
		for i > 0 && isBareKeyByte(data[i-1]) {
			i--
		}
	}
	return located{keyValue: span{start: i, end: v.end}, value: v}, nil
}

// stringSpan returns the span of a string literal including its quotes.
func stringSpan(data []byte, value *unstable.Node) (span, error) {
	if value.Raw.Length == 0 {
		return span{}, fmt.Errorf("%w: string value without position", ErrUnsupportedLayout)
	}
	s := span{start: int(value.Raw.Offset), end: int(value.Raw.Offset + value.Raw.Length)}
	if s.end > len(data) {
		return span{}, fmt.Errorf("%w: string value out of range", ErrUnsupportedLayout)
	}
	if !isQuote(data[s.start]) && s.start > 0 && isQuote(data[s.start-1]) {
		s.start--
		s.end++
	}
	if s.end > len(data) || !isQuote(data[s.start]) || !isQuote(data[s.end-1]) {
		return span{}, fmt.Errorf("%w: unexpected string literal at offset %d", ErrUnsupportedLayout, s.start)
	}
	return s, nil
}

// inlineRemoval widens kv to swallow one separating comma so the inline
// table stays well formed.
func inlineRemoval(data []byte, kv span) span {
	j := kv.end
	for j < len(data) && (data[j] == ' ' || data[j] == '\t') {
		j++
	}
	if j < len(data) && data[j] == ',' {
		j++
		for j < len(data) && (data[j] == ' ' || data[j] == '\t') {
			j++
		}
		return span{start: kv.start, end: j}
	}
	i := skipBackBlank(data, kv.start)
	if i > 0 && data[i-1] == ',' {
		return span{start: i - 1, end: kv.end}
	}
	return kv
}

// lineOf widens kv to its whole line, newline included.
func lineOf(data []byte, kv span) span {
	start := bytes.LastIndexByte(data[:kv.start], '\n') + 1
	end := len(data)
	if nl := bytes.IndexByte(data[kv.end:], '\n'); nl >= 0 {
		end = kv.end + nl + 1
	}
	return span{start: start, end: end}
}

type splice struct {
	span
	text string
}

func applySplices(data []byte, edits []splice) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := make([]byte, len(data))
	copy(out, data)
	for _, e := range edits {
		var buf bytes.Buffer
		buf.Grow(len(out) - (e.end - e.start) + len(e.text))
		buf.Write(out[:e.start])
		buf.WriteString(e.text)
		buf.Write(out[e.end:])
		out = buf.Bytes()
	}
	return out
}

func skipBackBlank(data []byte, i int) int {
	for i > 0 && (data[i-1] == ' ' || data[i-1] == '\t') {
		i--
	}
	return i
}

func isQuote(b byte) bool { return b == '"' || b == '\'' }

func isBareKeyByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

var basicStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteString(s string) string {
	return `"` + basicStringEscaper.Replace(s) + `"`
}
