package foam

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Entry is one `key value;` pair of a dictionary. Value is one of
// float64, string, []float64, or []string.
type Entry struct {
	Key   string
	Value any
}

// Dict is an ordered key/value dictionary. Insertion order is preserved
// so caller-supplied metadata round-trips verbatim.
type Dict struct {
	entries []Entry
}

// Set appends or replaces an entry, keeping its original position on
// replace.
func (d *Dict) Set(key string, value any) {
	for i := range d.entries {
		if d.entries[i].Key == key {
			d.entries[i].Value = value
			return
		}
	}
	d.entries = append(d.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (any, bool) {
	for _, e := range d.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns the entries in insertion order.
func (d *Dict) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Floats returns the numeric list stored under key.
func (d *Dict) Floats(key string) ([]float64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case []float64:
		return x, true
	case float64:
		return []float64{x}, true
	}
	return nil, false
}

// Words returns the word list stored under key. A numeric list is not a
// word list.
func (d *Dict) Words(key string) ([]string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case []string:
		return x, true
	case string:
		return []string{x}, true
	}
	return nil, false
}

// lexer splits dictionary source into words, strings, and the
// punctuation tokens ( ) { } ;. Comments (// and /* */) are skipped.
type lexer struct {
	src []byte
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			end := bytes.Index(l.src[l.pos+2:], []byte("*/"))
			if end < 0 {
				l.pos = len(l.src)
				return
			}
			l.pos += end + 4
		default:
			return
		}
	}
}

// next returns the next token, or "" at end of input.
func (l *lexer) next() (string, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return "", nil
	}
	c := l.src[l.pos]
	switch c {
	case '(', ')', '{', '}', ';':
		l.pos++
		return string(c), nil
	case '"':
		end := bytes.IndexByte(l.src[l.pos+1:], '"')
		if end < 0 {
			return "", fmt.Errorf("unterminated string at byte %d", l.pos)
		}
		tok := string(l.src[l.pos+1 : l.pos+1+end])
		l.pos += end + 2
		return `"` + tok + `"`, nil
	}
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' ||
			c == '(' || c == ')' || c == '{' || c == '}' || c == ';' {
			break
		}
		l.pos++
	}
	return string(l.src[start:l.pos]), nil
}

// ParseDict parses a sequence of top-level `key value;` entries.
// Sub-dictionaries (`key { ... }`) are parsed and exposed as *Dict
// values; the FoamFile header block is the only expected use.
func ParseDict(src []byte) (*Dict, error) {
	l := &lexer{src: src}
	d := &Dict{}
	for {
		key, err := l.next()
		if err != nil {
			return nil, err
		}
		if key == "" {
			return d, nil
		}
		if key == "(" || key == ")" || key == "{" || key == "}" || key == ";" {
			return nil, fmt.Errorf("unexpected %q where an entry key was expected", key)
		}
		value, err := parseValue(l)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		if _, ok := value.(*Dict); !ok {
			term, err := l.next()
			if err != nil {
				return nil, err
			}
			if term != ";" {
				return nil, fmt.Errorf("entry %q: missing terminating ';' (got %q)", key, term)
			}
		}
		d.Set(key, value)
	}
}

func parseValue(l *lexer) (any, error) {
	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	switch tok {
	case "":
		return nil, fmt.Errorf("unexpected end of input")
	case "(":
		return parseList(l)
	case "{":
		return parseSubDict(l)
	case ")", "}", ";":
		return nil, fmt.Errorf("unexpected %q", tok)
	}
	return scalarValue(tok), nil
}

func parseList(l *lexer) (any, error) {
	var words []string
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch tok {
		case "":
			return nil, fmt.Errorf("unterminated list")
		case ")":
			// A list is numeric only when every element parses.
			nums := make([]float64, len(words))
			for i, w := range words {
				v, err := strconv.ParseFloat(w, 64)
				if err != nil {
					return words, nil
				}
				nums[i] = v
			}
			if len(nums) == 0 {
				return []float64{}, nil
			}
			return nums, nil
		case "(", "{", "}", ";":
			return nil, fmt.Errorf("unexpected %q in list", tok)
		default:
			words = append(words, strings.Trim(tok, `"`))
		}
	}
}

func parseSubDict(l *lexer) (*Dict, error) {
	d := &Dict{}
	for {
		key, err := l.next()
		if err != nil {
			return nil, err
		}
		switch key {
		case "":
			return nil, fmt.Errorf("unterminated sub-dictionary")
		case "}":
			return d, nil
		}
		value, err := parseValue(l)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		if _, ok := value.(*Dict); !ok {
			term, err := l.next()
			if err != nil {
				return nil, err
			}
			if term != ";" {
				return nil, fmt.Errorf("entry %q: missing terminating ';' (got %q)", key, term)
			}
		}
		d.Set(key, value)
	}
}

func scalarValue(tok string) any {
	if strings.HasPrefix(tok, `"`) {
		return strings.Trim(tok, `"`)
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v
	}
	return tok
}

// Encode renders the dictionary in the solver's text layout.
func (d *Dict) Encode() []byte {
	var b bytes.Buffer
	for _, e := range d.entries {
		writeEntry(&b, e)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func writeEntry(b *bytes.Buffer, e Entry) {
	switch v := e.Value.(type) {
	case []float64:
		fmt.Fprintf(b, "%s\n(\n", e.Key)
		for _, x := range v {
			fmt.Fprintf(b, "    %s\n", formatFloat(x))
		}
		b.WriteString(");\n")
	case []string:
		fmt.Fprintf(b, "%s ( %s );\n", e.Key, strings.Join(v, " "))
	case float64:
		fmt.Fprintf(b, "%s %s;\n", e.Key, formatFloat(v))
	case *Dict:
		fmt.Fprintf(b, "%s\n{\n", e.Key)
		for _, sub := range v.entries {
			b.WriteString("    ")
			writeEntry(b, sub)
		}
		b.WriteString("}\n")
	default:
		fmt.Fprintf(b, "%s %v;\n", e.Key, v)
	}
}

// formatFloat renders with the shortest representation that round-trips
// bit-exact through ParseFloat.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
