// Package parser extracts normalized expense records from raw invoice
// documents. Parsing is a pure function over the document bytes.
package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"expensealert/internal/core"
)

// Field element names recognized anywhere in the document structure.
const (
	elemID       = "id"
	elemDate     = "date"
	elemAmount   = "amount"
	elemCategory = "category"
)

// Parse reads one invoice document and returns the normalized record.
//
// The four fields are located by element name at any nesting depth; the
// first occurrence of each wins. Every field is optional: a missing or
// non-numeric amount yields 0.0 and a missing or empty category yields
// core.DefaultCategory. Only input that cannot be read as markup at all
// fails, with a *core.ParseError.
func Parse(raw []byte) (core.Invoice, error) {
	fields, err := extractFields(raw)
	if err != nil {
		return core.Invoice{}, &core.ParseError{Reason: "malformed document", Err: err}
	}

	inv := core.Invoice{
		ExternalID: fields[elemID],
		Date:       fields[elemDate],
		Amount:     parseAmount(fields[elemAmount]),
		Category:   core.NormalizeCategory(fields[elemCategory]),
	}
	return inv, nil
}

// parseAmount converts the raw amount text to a non-negative float.
// Anything unparsable or negative collapses to 0.0 rather than failing.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0.0
	}
	return v
}

func extractFields(raw []byte) (map[string]string, error) {
	targets := map[string]bool{
		elemID:       true,
		elemDate:     true,
		elemAmount:   true,
		elemCategory: true,
	}
	fields := make(map[string]string, len(targets))

	dec := xml.NewDecoder(bytes.NewReader(raw))

	var (
		current string // target element currently being captured
		depth   int    // nesting depth inside the captured element
		buf     strings.Builder
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if current != "" {
				depth++
				continue
			}
			name := strings.ToLower(t.Name.Local)
			if _, captured := fields[name]; !captured && targets[name] {
				current = name
				depth = 1
				buf.Reset()
			}
		case xml.CharData:
			if current != "" {
				buf.Write(t)
			}
		case xml.EndElement:
			if current == "" {
				continue
			}
			depth--
			if depth == 0 {
				fields[current] = strings.TrimSpace(buf.String())
				current = ""
			}
		}
	}

	if !sawRoot {
		return nil, io.ErrUnexpectedEOF
	}
	return fields, nil
}
