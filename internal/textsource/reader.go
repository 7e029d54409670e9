package textsource

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"shortreel/internal/services"
)

// Read extracts the plain-text content of the document at path. Files with a
// .pdf extension go through page-level extraction; everything else is read
// verbatim.
func Read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "textsource", "read", path, err)
		}
		return "", services.Wrap(services.ErrParse, "textsource", "stat", path, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrParse, "textsource", "read", path+" is a directory", nil)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrParse, "textsource", "read", path, err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrParse, "textsource", "open pdf", path, err)
	}
	defer file.Close()

	var builder strings.Builder
	total := reader.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", services.Wrap(services.ErrParse, "textsource", "extract page", path, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// Flatten collapses newlines into spaces so narration text reads as one
// continuous passage.
func Flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}
