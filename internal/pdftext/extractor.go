// Package pdftext turns an uploaded PDF into one string of page text.
package pdftext

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"labrag/internal/domain"
	"labrag/internal/logging"
)

// Extractor validates a PDF's structure with pdfcpu and lays out page text
// from the glyph positions ledongthuc/pdf reports.
type Extractor struct {
	conf   *model.Configuration
	logger *log.Logger
}

func NewExtractor() *Extractor {
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf, logger: logging.Logger(logging.SourcePDF)}
}

// ExtractFile opens path and extracts its text.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return e.Extract(ctx, f, info.Size())
}

// Extract returns the text of every page that yields any, in page order,
// joined by single spaces. A document that does not parse as a PDF fails
// with domain.ErrFormat before any text is read.
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	pages, err := api.PageCount(io.NewSectionReader(r, 0, size), e.conf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	reader, err := openReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	if n := reader.NumPage(); n != pages {
		e.logger.Warn("page count disagreement", "pdfcpu", pages, "reader", n)
	}

	texts := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			e.logger.Debug("skipping null page", "page", i)
			continue
		}
		text, err := pageContent(page)
		if err != nil {
			e.logger.Debug("skipping unreadable page", "page", i, "err", err)
			continue
		}
		if text == "" {
			e.logger.Debug("skipping page without text", "page", i)
			continue
		}
		texts = append(texts, text)
	}
	e.logger.Debug("extracted report text", "pages", pages, "text_pages", len(texts))
	return strings.Join(texts, " "), nil
}

// openReader guards against panics inside the PDF parser on malformed input.
func openReader(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			reader, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdf.NewReader(r, size)
}
