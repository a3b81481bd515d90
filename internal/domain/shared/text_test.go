package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, "Bolt", NormalizeText("  Bolt\t"))
	})

	t.Run("composes decomposed hangul", func(t *testing.T) {
		decomposed := "가" // ᄀ + ᅡ
		assert.Equal(t, "가", NormalizeText(decomposed))
	})
}
