// Package extract pulls plain text out of uploaded financial documents. The
// analysis pipeline itself only ever sees extracted text; everything
// format-specific stays here.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/philvuai/bnk/internal/common"
)

// Supported document MIME types.
const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv"
	mimeText = "text/plain"
	mimeOFX  = "application/x-ofx"
)

// FromBytes extracts plain text from an in-memory document. The format is
// resolved from the MIME type with a filename-extension fallback, since
// browsers are unreliable about OOXML and OFX types.
func FromBytes(data []byte, fileName, mimeType string) (string, error) {
	switch resolveFormat(data, fileName, mimeType) {
	case mimePDF:
		return extractPDF(data)
	case mimeDOCX:
		return extractDOCX(data)
	case mimeXLSX:
		return extractXLSX(data)
	case mimeCSV:
		return extractCSV(data)
	case mimeOFX:
		return extractOFX(data)
	case mimeText:
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s (%s)", common.ErrUnsupportedFormat, filepath.Ext(fileName), mimeType)
	}
}

// resolveFormat maps the declared MIME type and filename onto one of the
// supported formats. Zip payloads are sniffed for their OOXML flavor.
func resolveFormat(data []byte, fileName, mimeType string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))

	switch clean {
	case mimePDF, mimeDOCX, mimeXLSX, mimeCSV, mimeOFX:
		return clean
	case "application/zip", "application/octet-stream", "":
		// Fall through to sniffing and the extension.
	default:
		if strings.HasPrefix(clean, "text/") {
			return mimeText
		}
	}

	if flavor := sniffOOXML(data); flavor != "" {
		return flavor
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".xlsx":
		return mimeXLSX
	case ".csv":
		return mimeCSV
	case ".ofx", ".qfx":
		return mimeOFX
	case ".txt":
		return mimeText
	}

	return ""
}

// sniffOOXML identifies docx/xlsx payloads by their zip contents.
func sniffOOXML(data []byte) string {
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return mimeXLSX
		}
	}
	return ""
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

// extractDOCX reads word/document.xml out of the OOXML container and strips
// the markup, emitting a newline per paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX container: %w", err)
	}

	doc := fileNamed(zr, "word/document.xml")
	if doc == nil {
		return "", fmt.Errorf("document.xml not found in DOCX container")
	}

	raw, err := readZipFile(doc)
	if err != nil {
		return "", err
	}

	return stripXML(raw, map[string]bool{"p": true, "br": true}), nil
}

// extractXLSX renders each worksheet row as one tab-separated text line,
// resolving shared strings.
func extractXLSX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open XLSX container: %w", err)
	}

	shared, err := sharedStrings(zr)
	if err != nil {
		return "", err
	}

	var sheets []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml") {
			sheets = append(sheets, f.Name)
		}
	}
	if len(sheets) == 0 {
		return "", fmt.Errorf("no worksheets found in XLSX container")
	}

	var buf strings.Builder
	for _, name := range sheets {
		raw, err := readZipFile(fileNamed(zr, name))
		if err != nil {
			return "", err
		}
		if err := writeSheetRows(&buf, raw, shared); err != nil {
			return "", fmt.Errorf("failed to parse worksheet %s: %w", name, err)
		}
	}

	return buf.String(), nil
}

// sharedStrings loads the workbook's shared string table, if present.
func sharedStrings(zr *zip.Reader) ([]string, error) {
	f := fileNamed(zr, "xl/sharedStrings.xml")
	if f == nil {
		return nil, nil
	}
	raw, err := readZipFile(f)
	if err != nil {
		return nil, err
	}

	var table struct {
		Items []struct {
			Text []string `xml:"t"`
		} `xml:"si"`
	}
	if err := xml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse shared strings: %w", err)
	}

	strs := make([]string, len(table.Items))
	for i, item := range table.Items {
		strs[i] = strings.Join(item.Text, "")
	}
	return strs, nil
}

// writeSheetRows streams one worksheet's rows into the builder.
func writeSheetRows(buf *strings.Builder, raw []byte, shared []string) error {
	var sheet struct {
		Rows []struct {
			Cells []struct {
				Type  string `xml:"t,attr"`
				Value string `xml:"v"`
				// Inline strings carry their text under is/t.
				Inline string `xml:"is>t"`
			} `xml:"c"`
		} `xml:"sheetData>row"`
	}
	if err := xml.Unmarshal(raw, &sheet); err != nil {
		return err
	}

	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			value := cell.Value
			switch cell.Type {
			case "s":
				if idx, err := parseIndex(value); err == nil && idx < len(shared) {
					value = shared[idx]
				}
			case "inlineStr":
				value = cell.Inline
			}
			if value != "" {
				cells = append(cells, value)
			}
		}
		if len(cells) > 0 {
			buf.WriteString(strings.Join(cells, "\t"))
			buf.WriteString("\n")
		}
	}
	return nil
}

func parseIndex(s string) (int, error) {
	var idx int
	_, err := fmt.Sscanf(s, "%d", &idx)
	return idx, err
}

// extractCSV renders each record as one tab-separated line so the pattern
// extractor sees the same shape it gets from statements.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var buf strings.Builder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read CSV: %w", err)
		}
		buf.WriteString(strings.Join(record, "\t"))
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// stripXML walks the markup and keeps character data, inserting a newline
// after each element named in breakAfter.
func stripXML(raw []byte, breakAfter map[string]bool) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return string(raw)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if breakAfter[t.Name.Local] && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func fileNamed(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return f
		}
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return raw, nil
}
