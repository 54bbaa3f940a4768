package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDOCX assembles a minimal DOCX archive in memory.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestTextPlainText(t *testing.T) {
	text, err := Text([]byte("pump maintenance procedure"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "pump maintenance procedure", text)
}

func TestTextPlainTextInvalidUTF8(t *testing.T) {
	text, err := Text([]byte{'o', 'k', 0xff, 0xfe, '!'}, ".txt")
	require.NoError(t, err)
	assert.Equal(t, "ok!", text)
}

func TestTextDOCX(t *testing.T) {
	data := buildDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Step 1: isolate power.</w:t></w:r></w:p>
<w:p><w:r><w:t>Step 2: lock out the breaker.</w:t></w:r></w:p>
</w:body>
</w:document>`)

	text, err := Text(data, ".docx")
	require.NoError(t, err)
	assert.Contains(t, text, "Step 1: isolate power.")
	assert.Contains(t, text, "Step 2: lock out the breaker.")
}

func TestTextDOCXMultipleRuns(t *testing.T) {
	data := buildDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Torque to </w:t></w:r><w:r><w:t>45 Nm</w:t></w:r></w:p>
</w:body>
</w:document>`)

	text, err := Text(data, ".docx")
	require.NoError(t, err)
	assert.Contains(t, text, "Torque to 45 Nm")
}

func TestTextDOCXNotAnArchive(t *testing.T) {
	_, err := Text([]byte("definitely not a zip"), ".docx")
	assert.Error(t, err)
}

func TestTextUnsupportedFormat(t *testing.T) {
	_, err := Text([]byte("data"), ".xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTextExtensionCaseInsensitive(t *testing.T) {
	text, err := Text([]byte("hello"), ".TXT")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
