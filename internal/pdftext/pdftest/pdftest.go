// Package pdftest writes minimal PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Row is one line of a lab result table: test name, value and range.
type Row [3]string

// Lines returns a PDF with one Helvetica text line per page. An empty string
// produces a page with an empty content stream.
func Lines(pages []string) []byte {
	streams := make([]string, len(pages))
	for i, text := range pages {
		if text != "" {
			streams[i] = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
	}
	return Pages(streams)
}

// Table returns a content stream drawing each row as cells placed with
// relative Td moves, the way report generators lay out result tables.
func Table(rows ...Row) string {
	var b strings.Builder
	b.WriteString("BT /F1 10 Tf 72 720 Td")
	for i, row := range rows {
		if i > 0 {
			b.WriteString(" -250 -18 Td")
		}
		fmt.Fprintf(&b, " (%s) Tj 150 0 Td (%s) Tj 100 0 Td (%s) Tj", row[0], row[1], row[2])
	}
	b.WriteString(" ET")
	return b.String()
}

// Pages returns a PDF with one page per content stream. Font /F1 is
// Helvetica without a width table.
func Pages(streams []string) []byte {
	var objects []string
	n := len(streams)
	kids := make([]string, n)
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, content := range streams {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
