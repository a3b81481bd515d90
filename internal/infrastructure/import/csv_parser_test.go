package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDelimitedReader(t *testing.T) {
	t.Run("Valid UTF-8 input", func(t *testing.T) {
		parser, err := NewDelimitedReader(strings.NewReader("2024-01-01,AcmeCo,Bolt,M8,10"))

		require.NoError(t, err)
		require.NotNil(t, parser)
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		parser, err := NewDelimitedReader(strings.NewReader("\xEF\xBB\xBF20240101,AcmeCo,Bolt,M8,10"))
		require.NoError(t, err)

		rec, err := parser.Next()
		require.NoError(t, err)
		assert.Equal(t, "20240101", rec.Fields[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewDelimitedReader(strings.NewReader(""))

		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid encoding returns error", func(t *testing.T) {
		_, err := NewDelimitedReader(strings.NewReader("\xff\xfe\x00a,b"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		parser, err := NewDelimitedReader(strings.NewReader("a;b;c"), WithDelimiter(';'))
		require.NoError(t, err)

		rec, err := parser.Next()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, rec.Fields)
	})
}

func TestDelimitedReader_Next(t *testing.T) {
	t.Run("Trims fields", func(t *testing.T) {
		parser, _ := NewDelimitedReader(strings.NewReader("  a  , b ,c\n"))

		rec, err := parser.Next()
		require.NoError(t, err)
		assert.Equal(t, 1, rec.Line)
		assert.Equal(t, []string{"a", "b", "c"}, rec.Fields)

		_, err = parser.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("Line numbers skip blank lines", func(t *testing.T) {
		parser, _ := NewDelimitedReader(strings.NewReader("a,b\n\n\nc,d\n"))

		records, err := parser.ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 1, records[0].Line)
		assert.Equal(t, 4, records[1].Line)
		assert.Equal(t, 2, parser.Count())
	})

	t.Run("Variable field counts are allowed", func(t *testing.T) {
		parser, _ := NewDelimitedReader(strings.NewReader("a,b,c\nd,e\n"))

		records, err := parser.ReadAll()
		require.NoError(t, err)
		assert.Len(t, records[0].Fields, 3)
		assert.Len(t, records[1].Fields, 2)
	})
}

func TestReadTSV(t *testing.T) {
	t.Run("Keeps empty cells", func(t *testing.T) {
		records, err := ReadTSV(strings.NewReader("20240101\t\tBolt\tM8\t10\n"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"20240101", "", "Bolt", "M8", "10"}, records[0].Fields)
	})

	t.Run("Quoted cell with thousands separator", func(t *testing.T) {
		records, err := ReadTSV(strings.NewReader("2024-01-01\tAcmeCo\tBolt\tM8\t\"1,200\"\r\n"))
		require.NoError(t, err)
		assert.Equal(t, "1,200", records[0].Fields[4])
	})

	t.Run("Row of empty cells is kept", func(t *testing.T) {
		records, err := ReadTSV(strings.NewReader("a\tb\n\t\t\t\t\n"))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[1].IsEmpty())
	})
}

func TestTrimSpaces(t *testing.T) {
	assert.Equal(t, "Bolt", trimSpaces("  Bolt\t"))
	assert.Equal(t, "", trimSpaces(" \r\n"))
	assert.Equal(t, "M8", trimSpaces("\u00a0M8\u00a0"))
}
