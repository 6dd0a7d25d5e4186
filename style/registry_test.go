package style

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveNamedAndInline(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("P1", KindParagraph, &Paragraph{Alignment: Of(AlignCenter)}, nil))

	got := reg.ResolveParagraph(&Paragraph{SpaceAfter: Of(200)}, "P1")

	want := &Paragraph{Alignment: Of(AlignCenter), SpaceAfter: Of(200)}
	assert.Equal(t, want, got)
}

func TestRegistry_ResolveFallback(t *testing.T) {
	reg := NewRegistry()

	for _, kind := range Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			got := reg.Resolve(kind, nil, "")
			require.NotNil(t, got)
			assert.Equal(t, kind, got.Kind())
			assert.Equal(t, Fallback(kind), got)
		})
	}

	font := reg.ResolveFont(nil, "")
	assert.Equal(t, "Arial", *font.Name)
	assert.Equal(t, 10.0, *font.Size)
	assert.Equal(t, "000000", *font.Color)
}

func TestRegistry_DefaultReplacesFallback(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.SetDefault(KindFont, &Font{Name: Of("Calibri")}))

	font := reg.ResolveFont(nil, "")
	assert.Equal(t, "Calibri", *font.Name)
	// The fallback only applies when no default exists.
	assert.Nil(t, font.Size)

	require.NoError(t, reg.SetDefault(KindFont, &Font{Name: Of("Cambria"), Size: Of(12.0)}))
	font = reg.ResolveFont(nil, "")
	assert.Equal(t, "Cambria", *font.Name)
	assert.Equal(t, 12.0, *font.Size)
}

func TestRegistry_Precedence(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.SetDefault(KindFont, &Font{Name: Of("Times"), Size: Of(11.0), Bold: Of(false)}))
	require.NoError(t, reg.Register("Strong", KindFont, &Font{Bold: Of(true), Size: Of(14.0)}, nil))

	tests := []struct {
		name     string
		inline   *Font
		named    string
		wantName string
		wantSize float64
		wantBold bool
	}{
		{"default only", nil, "", "Times", 11, false},
		{"named over default", nil, "Strong", "Times", 14, true},
		{"inline over named", &Font{Size: Of(9.0)}, "Strong", "Times", 9, true},
		{"unknown name falls through", &Font{Name: Of("Mono")}, "Missing", "Mono", 11, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.ResolveFont(tt.inline, tt.named)
			assert.Equal(t, tt.wantName, *got.Name)
			assert.Equal(t, tt.wantSize, *got.Size)
			assert.Equal(t, tt.wantBold, *got.Bold)
		})
	}
}

func TestRegistry_BasedOnChain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Define(Entry{Name: "Base", Kind: KindParagraph,
		Value: &Paragraph{Alignment: Of(AlignLeft), SpaceBefore: Of(120)}}))
	require.NoError(t, reg.Define(Entry{Name: "Derived", Kind: KindParagraph, BasedOn: "Base",
		Value: &Paragraph{Alignment: Of(AlignRight)}}))

	got := reg.ResolveParagraph(nil, "Derived")
	assert.Equal(t, AlignRight, *got.Alignment)
	assert.Equal(t, 120, *got.SpaceBefore)
}

func TestRegistry_BasedOnCycle(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Define(Entry{Name: "A", Kind: KindParagraph, BasedOn: "B", Value: &Paragraph{SpaceAfter: Of(1)}}))
	require.NoError(t, reg.Define(Entry{Name: "B", Kind: KindParagraph, BasedOn: "A", Value: &Paragraph{SpaceBefore: Of(2)}}))

	got := reg.ResolveParagraph(nil, "A")
	assert.Equal(t, 1, *got.SpaceAfter)
	assert.Equal(t, 2, *got.SpaceBefore)
}

func TestRegistry_LastWriteWins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("X", KindFont, &Font{Bold: Of(true)}, nil))
	require.NoError(t, reg.Register("Y", KindFont, &Font{Italic: Of(true)}, nil))
	require.NoError(t, reg.Register("X", KindFont, &Font{Strike: Of(true)}, nil))

	got := reg.Get("X", KindFont).(*Font)
	assert.Nil(t, got.Bold)
	assert.True(t, *got.Strike)

	entries := reg.Entries(KindFont)
	require.Len(t, entries, 2)
	assert.Equal(t, "X", entries[0].Name)
	assert.Equal(t, "Y", entries[1].Name)
}

func TestRegistry_NamesArePerKind(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("Same", KindFont, &Font{Bold: Of(true)}, nil))
	require.NoError(t, reg.Register("Same", KindParagraph, &Paragraph{KeepNext: Of(true)}, nil))

	assert.IsType(t, &Font{}, reg.Get("Same", KindFont))
	assert.IsType(t, &Paragraph{}, reg.Get("Same", KindParagraph))
	assert.Nil(t, reg.Get("Same", KindTable))
}

func TestRegistry_RegisterDoesNotSetDefault(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("Normal", KindParagraph, &Paragraph{Alignment: Of(AlignJustify)}, nil))

	assert.False(t, reg.HasDefault(KindParagraph))
	assert.Nil(t, reg.ResolveParagraph(nil, "").Alignment)
}

func TestRegistry_PublishedValuesAreCopies(t *testing.T) {
	reg := NewRegistry()
	size := 12.0
	f := &Font{Size: &size}
	require.NoError(t, reg.Register("F", KindFont, f, nil))

	size = 99
	f.Bold = Of(true)

	got := reg.Get("F", KindFont).(*Font)
	assert.Equal(t, 12.0, *got.Size)
	assert.Nil(t, got.Bold)

	*got.Size = 50
	assert.Equal(t, 12.0, *reg.Get("F", KindFont).(*Font).Size)
}

func TestRegistry_Validation(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		err  error
	}{
		{"empty name", reg.Register("", KindFont, &Font{}, nil)},
		{"unknown kind", reg.Register("x", Kind(42), &Font{}, nil)},
		{"nil value", reg.Register("x", KindFont, nil, nil)},
		{"typed nil value", reg.Register("x", KindFont, (*Font)(nil), nil)},
		{"kind mismatch", reg.Register("x", KindParagraph, &Font{}, nil)},
		{"bad enum", reg.Register("x", KindParagraph, &Paragraph{Alignment: Of(Alignment("middle"))}, nil)},
		{"bad companion", reg.Register("x", KindParagraph, &Paragraph{}, &Font{Size: Of(-1.0)})},
		{"default kind mismatch", reg.SetDefault(KindFont, &Paragraph{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.ErrorIs(t, tt.err, ErrValidation)
			var ve *ValidationError
			assert.True(t, errors.As(tt.err, &ve))
		})
	}
	assert.Empty(t, reg.Entries(KindFont))
}

func TestRegistry_ResolvePanicsOnUnknownKind(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() { reg.Resolve(Kind(99), nil, "") })
	assert.Panics(t, func() { reg.Resolve(KindFont, &Paragraph{}, "") })
}

func TestRegistry_Seal(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("A", KindFont, &Font{Bold: Of(true)}, nil))
	reg.Seal()

	assert.True(t, reg.Sealed())
	assert.ErrorIs(t, reg.Register("B", KindFont, &Font{}, nil), ErrSealed)
	assert.ErrorIs(t, reg.SetDefault(KindFont, &Font{}), ErrSealed)
	// Reads still work.
	assert.True(t, *reg.ResolveFont(nil, "A").Bold)
}

func TestRegistry_Companion(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Define(Entry{Name: "Heading", Kind: KindParagraph, Value: &Paragraph{KeepNext: Of(true)},
		Companion: &Font{Bold: Of(true), Size: Of(16.0)}}))
	require.NoError(t, reg.Define(Entry{Name: "Heading2", Kind: KindParagraph, BasedOn: "Heading", Value: &Paragraph{},
		Companion: &Font{Size: Of(13.0)}}))

	c, ok := reg.Companion(KindParagraph, "Heading2").(*Font)
	require.True(t, ok)
	assert.Equal(t, 13.0, *c.Size)
	assert.True(t, *c.Bold)

	assert.Nil(t, reg.Companion(KindParagraph, "Missing"))

	// Companion sits between the run's own styles and the default.
	font := reg.ResolveFont(&Font{Italic: Of(true)}, "", c)
	assert.True(t, *font.Italic)
	assert.True(t, *font.Bold)
	assert.Equal(t, 13.0, *font.Size)
	assert.Equal(t, "Arial", *font.Name)
}

func TestMergeAndIsEmpty(t *testing.T) {
	got := Merge(KindCell, &Cell{Width: Of(100)}, nil, &Font{Bold: Of(true)}, &Cell{Width: Of(5), BgColor: Of("FF0000")})
	assert.Equal(t, &Cell{Width: Of(100), BgColor: Of("FF0000")}, got)

	assert.True(t, IsEmpty(&Row{}))
	assert.True(t, IsEmpty(nil))
	assert.False(t, IsEmpty(&Row{Header: Of(true)}))
}
