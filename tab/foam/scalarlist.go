package foam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatASCII and FormatBinary are the scalarList body encodings.
const (
	FormatASCII  = "ascii"
	FormatBinary = "binary"
)

const scalarListClass = "scalarList"

const headerSeparator = "// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //"

const fileFooter = "// ************************************************************************* //"

// ReadScalarList reads a scalarList file, auto-detecting the ascii or
// binary body from the header's format flag. The header's class tag must
// be scalarList and the declared element count must match the body.
func ReadScalarList(path string) ([]float64, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	header, body, err := splitHeader(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	class, _ := header.Get("class")
	if class != scalarListClass {
		return nil, fmt.Errorf("%s: file does not store a %s (class %v)", path, scalarListClass, class)
	}
	format, _ := header.Get("format")
	switch format {
	case FormatASCII:
		return readASCIIBody(body, path)
	case FormatBinary:
		return readBinaryBody(body, path)
	}
	return nil, fmt.Errorf("%s: unknown format flag %v", path, format)
}

// splitHeader isolates the FoamFile block and returns it parsed along
// with the remaining body bytes.
func splitHeader(src []byte) (*Dict, []byte, error) {
	start := bytes.Index(src, []byte("FoamFile"))
	if start < 0 {
		return nil, nil, fmt.Errorf("missing FoamFile header")
	}
	open := bytes.IndexByte(src[start:], '{')
	if open < 0 {
		return nil, nil, fmt.Errorf("malformed FoamFile header")
	}
	open += start
	close := bytes.IndexByte(src[open:], '}')
	if close < 0 {
		return nil, nil, fmt.Errorf("malformed FoamFile header")
	}
	close += open
	header, err := ParseDict(src[open+1 : close])
	if err != nil {
		return nil, nil, fmt.Errorf("FoamFile header: %w", err)
	}
	return header, src[close+1:], nil
}

func readASCIIBody(body []byte, path string) ([]float64, error) {
	fields := strings.Fields(stripComments(body))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: empty scalarList body", path)
	}
	// Optional leading element count before the parenthesized list.
	declared := -1
	if fields[0] != "(" {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s: expected element count or '(', got %q", path, fields[0])
		}
		declared = n
		fields = fields[1:]
	}
	if len(fields) < 2 || fields[0] != "(" || fields[len(fields)-1] != ")" {
		return nil, fmt.Errorf("%s: scalarList body is not a parenthesized list", path)
	}
	values := make([]float64, 0, len(fields)-2)
	for _, f := range fields[1 : len(fields)-1] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid scalar %q", path, f)
		}
		values = append(values, v)
	}
	if declared >= 0 && declared != len(values) {
		return nil, fmt.Errorf("%s: declared %d elements, body holds %d", path, declared, len(values))
	}
	return values, nil
}

func readBinaryBody(body []byte, path string) ([]float64, error) {
	// Body layout: decimal element count, then '(', then count raw
	// float64 values, then ')'. Comment lines may precede the count but
	// never the raw bytes.
	i := skipBlanks(body, 0)
	j := i
	for j < len(body) && body[j] >= '0' && body[j] <= '9' {
		j++
	}
	if j == i {
		return nil, fmt.Errorf("%s: missing element count before binary list", path)
	}
	count, err := strconv.Atoi(string(body[i:j]))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid element count: %w", path, err)
	}
	k := bytes.IndexByte(body[j:], '(')
	if k < 0 {
		return nil, fmt.Errorf("%s: binary scalarList body is not parenthesized", path)
	}
	start := j + k + 1
	end := start + 8*count
	if end >= len(body) || body[end] != ')' {
		return nil, fmt.Errorf("%s: binary body truncated (%d elements declared)", path, count)
	}
	values := make([]float64, count)
	for n := 0; n < count; n++ {
		bits := binary.LittleEndian.Uint64(body[start+8*n:])
		values[n] = math.Float64frombits(bits)
	}
	return values, nil
}

// skipBlanks advances past whitespace and // comment lines.
func skipBlanks(src []byte, i int) int {
	for i < len(src) {
		switch {
		case src[i] == ' ' || src[i] == '\t' || src[i] == '\r' || src[i] == '\n':
			i++
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func stripComments(src []byte) string {
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		if src[i] == '/' && i+1 < len(src) && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			b.WriteByte('\n')
			continue
		}
		if src[i] == '/' && i+1 < len(src) && src[i+1] == '*' {
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				break
			}
			i += end + 3
			continue
		}
		b.WriteByte(src[i])
	}
	return b.String()
}

// WriteScalarList writes a scalarList file at path with the given body
// format. The object name in the header is the file's base name and the
// location its parent directory, matching the solver's conventions.
func WriteScalarList(path string, values []float64, format string) error {
	if format != FormatASCII && format != FormatBinary {
		return fmt.Errorf("unknown scalarList format %q", format)
	}
	var b bytes.Buffer
	writeFileHeader(&b, scalarListClass, format, path)
	fmt.Fprintf(&b, "\n%d\n", len(values))
	if format == FormatASCII {
		b.WriteString("(\n")
		for _, v := range values {
			b.WriteString(formatFloat(v))
			b.WriteByte('\n')
		}
		b.WriteString(")\n")
	} else {
		b.WriteByte('(')
		raw := make([]byte, 8)
		for _, v := range values {
			binary.LittleEndian.PutUint64(raw, math.Float64bits(v))
			b.Write(raw)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\n" + fileFooter + "\n")
	return os.WriteFile(path, b.Bytes(), 0o644)
}

// writeFileHeader emits the FoamFile block for a file at path.
func writeFileHeader(b *bytes.Buffer, class, format, path string) {
	dir, file := filepath.Split(path)
	location := filepath.Base(filepath.Clean(dir))
	b.WriteString("FoamFile\n{\n")
	fmt.Fprintf(b, "    version     2.0;\n")
	fmt.Fprintf(b, "    format      %s;\n", format)
	fmt.Fprintf(b, "    class       %s;\n", class)
	fmt.Fprintf(b, "    location    %q;\n", location)
	fmt.Fprintf(b, "    object      %s;\n", file)
	b.WriteString("}\n" + headerSeparator + "\n")
}
