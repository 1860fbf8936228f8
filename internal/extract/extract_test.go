package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philvuai/bnk/internal/common"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>GBP
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250601120000[0:GMT]
<DTEND>20250630120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250605120000[0:GMT]
<TRNAMT>-45.99
<FITID>2025060501
<NAME>OFFICE SUPPLIES LTD
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250610120000[0:GMT]
<TRNAMT>-29.99
<FITID>2025061001
<NAME>DEBIT
<MEMO>CLOUD SOFTWARE SUBSCRIPTION
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250630120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestFromBytesPlainText(t *testing.T) {
	text, err := FromBytes([]byte("05/06/2025 OFFICE SUPPLIES £45.99"), "statement.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "05/06/2025 OFFICE SUPPLIES £45.99", text)
}

func TestFromBytesTextWithCharset(t *testing.T) {
	text, err := FromBytes([]byte("hello"), "notes.md", "text/markdown; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestFromBytesCSV(t *testing.T) {
	csvData := "Date,Description,Amount\n05/06/2025,\"OFFICE SUPPLIES, LTD\",-45.99\n"

	text, err := FromBytes([]byte(csvData), "statement.csv", "text/csv")
	require.NoError(t, err)

	assert.Contains(t, text, "Date\tDescription\tAmount")
	// Quoted commas survive as part of the field.
	assert.Contains(t, text, "OFFICE SUPPLIES, LTD")
	assert.Contains(t, text, "-45.99")
}

func TestFromBytesUnsupported(t *testing.T) {
	_, err := FromBytes([]byte{0x00, 0x01}, "image.png", "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestFromBytesOFX(t *testing.T) {
	text, err := FromBytes([]byte(sampleBankOFX), "statement.ofx", "application/x-ofx")
	require.NoError(t, err)

	assert.Contains(t, text, "05/06/2025 OFFICE SUPPLIES LTD -45.99")
	// Generic NAME is replaced with the MEMO field.
	assert.Contains(t, text, "10/06/2025 CLOUD SOFTWARE SUBSCRIPTION -29.99")
}

func TestFromBytesOFXByExtension(t *testing.T) {
	// Browsers commonly upload OFX as octet-stream.
	text, err := FromBytes([]byte(sampleBankOFX), "statement.qfx", "application/octet-stream")
	require.NoError(t, err)
	assert.Contains(t, text, "OFFICE SUPPLIES LTD")
}

func TestFromBytesOFXInvalid(t *testing.T) {
	_, err := FromBytes([]byte("not valid OFX"), "statement.ofx", "application/x-ofx")
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "mixed-case severity uppercased",
			input:    "<SEVERITY>Info</SEVERITY>",
			expected: "<SEVERITY>INFO</SEVERITY>",
		},
		{
			name:     "unclosed tag gets closing bracket",
			input:    "<OFX>\n<TRNAMT\n</OFX>",
			expected: "<OFX>\n<TRNAMT>\n</OFX>",
		},
		{
			name:     "leading blank lines trimmed",
			input:    "\n\n  OFXHEADER:100",
			expected: "OFXHEADER:100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, preprocessOFX(tt.input))
		})
	}
}

// buildZip assembles an in-memory zip with the given name/content pairs.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFromBytesDOCX(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Statement for June 2025</w:t></w:r></w:p>
<w:p><w:r><w:t>05/06/2025 OFFICE SUPPLIES LTD </w:t></w:r><w:r><w:t>-45.99</w:t></w:r></w:p>
</w:body>
</w:document>`
	data := buildZip(t, map[string]string{"word/document.xml": docXML})

	text, err := FromBytes(data, "statement.docx", mimeDOCX)
	require.NoError(t, err)

	assert.Contains(t, text, "Statement for June 2025\n")
	// Runs within one paragraph join without a separator.
	assert.Contains(t, text, "05/06/2025 OFFICE SUPPLIES LTD -45.99")
}

func TestFromBytesDOCXSniffedFromZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="x"><w:p><w:t>hello</w:t></w:p></w:document>`,
	})

	// Declared as a bare zip, resolved by sniffing the container.
	text, err := FromBytes(data, "upload.bin", "application/zip")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestFromBytesXLSX(t *testing.T) {
	shared := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>Date</t></si>
<si><t>OFFICE SUPPLIES LTD</t></si>
</sst>`
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row><c t="s"><v>0</v></c><c t="inlineStr"><is><t>Description</t></is></c></row>
<row><c t="s"><v>1</v></c><c><v>-45.99</v></c></row>
</sheetData>
</worksheet>`
	data := buildZip(t, map[string]string{
		"xl/workbook.xml":          `<workbook/>`,
		"xl/sharedStrings.xml":     shared,
		"xl/worksheets/sheet1.xml": sheet,
	})

	text, err := FromBytes(data, "statement.xlsx", mimeXLSX)
	require.NoError(t, err)

	assert.Contains(t, text, "Date\tDescription\n")
	assert.Contains(t, text, "OFFICE SUPPLIES LTD\t-45.99\n")
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		expected string
	}{
		{"explicit pdf", "a.bin", mimePDF, mimePDF},
		{"pdf by extension", "statement.PDF", "", mimePDF},
		{"csv by extension", "data.csv", "application/octet-stream", mimeCSV},
		{"qfx extension", "export.qfx", "", mimeOFX},
		{"generic text type", "readme", "text/html", mimeText},
		{"unknown", "blob.bin", "application/octet-stream", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveFormat(nil, tt.fileName, tt.mimeType))
		})
	}
}
