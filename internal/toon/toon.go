// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// annotation reports.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/nginject/internal/inject"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// File statuses.
const (
	Changed   = "changed"
	Unchanged = "unchanged"
	Skipped   = "skipped"
	Failed    = "error"
)

// Report summarizes one run.
type Report struct {
	Root  string
	Files []File
}

// File is one row of the report.
type File struct {
	Path        string
	Status      string
	Annotations []inject.Annotation
	Err         error
}

// Encode converts a Report into TOON format.
func Encode(r *Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))

	var fileRows [][]string
	for i := range r.Files {
		f := &r.Files[i]
		fileRows = append(fileRows, []string{
			f.Path,
			f.Status,
			fmt.Sprintf("%d", len(f.Annotations)),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "status", "annotations"}, fileRows))

	var annRows [][]string
	for i := range r.Files {
		f := &r.Files[i]
		for _, a := range f.Annotations {
			source := "implicit"
			if a.Explicit {
				source = "explicit"
			}
			annRows = append(annRows, []string{
				f.Path,
				fmt.Sprintf("%d", a.Pos.Line),
				fmt.Sprintf("%d", a.Pos.Column),
				a.Name,
				string(a.Strategy),
				source,
				strings.Join(a.Params, " "),
			})
		}
	}
	parts = append(parts, formatTabular("annotations",
		[]string{"file", "line", "column", "name", "strategy", "source", "params"}, annRows))

	var errRows [][]string
	for i := range r.Files {
		f := &r.Files[i]
		if f.Err != nil {
			errRows = append(errRows, []string{f.Path, f.Err.Error()})
		}
	}
	if len(errRows) > 0 {
		parts = append(parts, formatTabular("errors", []string{"file", "error"}, errRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
