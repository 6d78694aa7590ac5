package export

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CSV writes a header line then one line per row, each terminated by \n.
// Text fields are quoted only when they hold a comma, a double quote or a newline
type CSV struct{}

const csvHeader = "ID,Type Number,Type Selector,Type Free Text,Created At\n"

func (CSV) ContentType() string { return "text/csv" }
func (CSV) Extension() string   { return "csv" }

func (CSV) Encode(rows []Record) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(csvHeader) + len(rows)*64)
	b.WriteString(csvHeader)
	for _, r := range rows {
		b.WriteString(strconv.FormatInt(r.ID, 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(int64(r.TypeNumber), 10))
		b.WriteByte(',')
		b.WriteString(csvField(r.TypeSelector))
		b.WriteByte(',')
		b.WriteString(csvField(r.TypeFreeText))
		b.WriteByte(',')
		b.WriteString(Timestamp(r.CreatedAt))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JSON is an array of row objects
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }
func (JSON) Extension() string   { return "json" }

func (JSON) Encode(rows []Record) ([]byte, error) {
	if rows == nil {
		rows = []Record{}
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		r.CreatedAt = r.CreatedAt.UTC()
		out[i] = r
	}
	return json.Marshal(out)
}

// XML is a <rows> document with two-space indentation and no trailing newline
type XML struct{}

func (XML) ContentType() string { return "application/xml" }
func (XML) Extension() string   { return "xml" }

func (XML) Encode(rows []Record) ([]byte, error) {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<rows>\n")
	for _, r := range rows {
		b.WriteString("  <row>\n")
		xmlElem(&b, "id", strconv.FormatInt(r.ID, 10))
		xmlElem(&b, "typeNumber", strconv.FormatInt(int64(r.TypeNumber), 10))
		xmlElem(&b, "typeSelector", xmlEscaper.Replace(r.TypeSelector))
		xmlElem(&b, "typeFreeText", xmlEscaper.Replace(r.TypeFreeText))
		xmlElem(&b, "createdAt", Timestamp(r.CreatedAt))
		b.WriteString("  </row>\n")
	}
	b.WriteString("</rows>")
	return []byte(b.String()), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlElem(b *strings.Builder, name, value string) {
	b.WriteString("    <")
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(value)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">\n")
}
