package notes

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"
)

// csvHeader is the first line of every export.
var csvHeader = []string{
	"Contact Name",
	"Contact Email",
	"Notes",
	"Created By",
	"Created Date",
	"Updated Date",
}

// csvDateLayout formats created and updated dates.
const csvDateLayout = "2006-01-02"

// CSVContentType is the Content-Type of an export response.
const CSVContentType = "text/csv; charset=utf-8"

// ExportCSV writes notes as CSV. Text fields are always quoted with inner
// quotes doubled and line breaks in note text flattened to spaces; a missing
// contact email is an empty field. Lines are separated by "\n".
func ExportCSV(w io.Writer, notes []Note) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",")); err != nil {
		return err
	}

	for _, n := range notes {
		email := ""
		if n.ContactEmail != nil && *n.ContactEmail != "" {
			email = quote(*n.ContactEmail)
		}
		row := []string{
			quote(n.ContactName),
			email,
			quote(flatten(n.Notes)),
			quote(n.AuthorName),
			n.CreatedAt.UTC().Format(csvDateLayout),
			n.UpdatedAt.UTC().Format(csvDateLayout),
		}
		if _, err := bw.WriteString("\n" + strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// unsafeFilenameChars matches everything replaced in export filenames.
var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFilename is the download name for a project's export taken on day.
func ExportFilename(projectName string, day time.Time) string {
	return unsafeFilenameChars.ReplaceAllString(projectName, "_") + "_notes_" + day.Format(csvDateLayout) + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// flatten replaces line breaks so each note stays on one CSV line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
