package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Font(t *testing.T) {
	s, diag, err := Decode(KindFont, map[string]interface{}{
		"name":      "Georgia",
		"size":      "12",
		"bold":      true,
		"underline": "double",
		"font-size": 1,
	}, ModeLenient)
	require.NoError(t, err)

	f := s.(*Font)
	assert.Equal(t, "Georgia", *f.Name)
	assert.Equal(t, 12.0, *f.Size)
	assert.True(t, *f.Bold)
	assert.Equal(t, UnderlineDouble, *f.Underline)
	assert.Nil(t, f.Italic)
	assert.Equal(t, []string{"font-size"}, diag.Ignored)
}

func TestDecode_KeyNormalization(t *testing.T) {
	s, _, err := Decode(KindParagraph, map[string]interface{}{
		"space_after": 240,
		"SpaceBefore": 120,
		"keep-next":   "true",
	}, ModeStrict)
	require.NoError(t, err)

	p := s.(*Paragraph)
	assert.Equal(t, 240, *p.SpaceAfter)
	assert.Equal(t, 120, *p.SpaceBefore)
	assert.True(t, *p.KeepNext)
}

func TestDecode_StrictRejectsUnknownKeys(t *testing.T) {
	_, _, err := Decode(KindTable, map[string]interface{}{"width": 5000, "colour": "red"}, ModeStrict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "colour")
}

func TestDecode_InvalidEnumAlwaysFails(t *testing.T) {
	for _, mode := range []Mode{ModeStrict, ModeLenient} {
		t.Run(mode.String(), func(t *testing.T) {
			_, _, err := Decode(KindCell, map[string]interface{}{"valign": "sideways"}, mode)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	_, _, err := Decode(KindUnknown, map[string]interface{}{}, ModeLenient)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegistry_RegisterMap(t *testing.T) {
	reg := NewRegistry(WithMode(ModeLenient))
	diag, err := reg.RegisterMap("Title", KindParagraph,
		map[string]interface{}{"alignment": "center", "bogus": 1},
		KindFont, map[string]interface{}{"size": 24, "bold": "1", "shadow": true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bogus", "shadow"}, diag.Ignored)

	e, ok := reg.Entry("Title", KindParagraph)
	require.True(t, ok)
	assert.Equal(t, AlignCenter, *e.Value.(*Paragraph).Alignment)
	assert.Equal(t, 24.0, *e.Companion.(*Font).Size)

	strict := NewRegistry()
	_, err = strict.RegisterMap("Title", KindParagraph, map[string]interface{}{"bogus": 1}, KindFont, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, strict.Get("Title", KindParagraph))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Lenient")
	require.NoError(t, err)
	assert.Equal(t, ModeLenient, m)

	_, err = ParseMode("loose")
	assert.Error(t, err)
}
