package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Mode controls how unknown keys are treated when decoding a style from a map.
type Mode int

const (
	// ModeStrict rejects unknown keys.
	ModeStrict Mode = iota
	// ModeLenient ignores unknown keys and reports them in Diagnostics.
	ModeLenient
)

func (m Mode) String() string {
	if m == ModeLenient {
		return "lenient"
	}
	return "strict"
}

// ParseMode accepts "strict" or "lenient".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return ModeStrict, nil
	case "lenient":
		return ModeLenient, nil
	}
	return ModeStrict, fmt.Errorf("style: unknown mode %q", s)
}

// Diagnostics lists what a lenient decode skipped.
type Diagnostics struct {
	Ignored []string
}

// Decode builds a style of kind from a loosely-typed option map. Keys match
// field tags case-insensitively, with '-' and '_' ignored, so "space_after"
// and "SpaceAfter" both set SpaceAfter. Values are converted weakly ("12" is
// a valid size).
func Decode(kind Kind, input map[string]interface{}, mode Mode) (Style, Diagnostics, error) {
	out := newOf(kind)
	if out == nil {
		return nil, Diagnostics{}, &ValidationError{Op: "decode", Err: fmt.Errorf("unknown style kind %d", kind)}
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		Metadata:         &md,
		TagName:          "style",
		ErrorUnused:      mode == ModeStrict,
		WeaklyTypedInput: true,
		MatchName:        matchKey,
	})
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("style: building decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return nil, Diagnostics{}, &ValidationError{Op: "decode", Kind: kind, Err: err}
	}
	if err := Validate(out); err != nil {
		return nil, Diagnostics{}, err
	}

	diag := Diagnostics{Ignored: md.Unused}
	sort.Strings(diag.Ignored)
	return out, diag, nil
}

// RegisterMap decodes value and companion maps in the registry's mode and
// registers the result. companionKind is ignored when companion is empty.
func (r *Registry) RegisterMap(name string, kind Kind, value map[string]interface{}, companionKind Kind, companion map[string]interface{}) (Diagnostics, error) {
	v, diag, err := Decode(kind, value, r.mode)
	if err != nil {
		return diag, err
	}
	var c Style
	if len(companion) > 0 {
		var cdiag Diagnostics
		c, cdiag, err = Decode(companionKind, companion, r.mode)
		if err != nil {
			return diag, err
		}
		diag.Ignored = append(diag.Ignored, cdiag.Ignored...)
	}
	return diag, r.Register(name, kind, v, c)
}

func matchKey(mapKey, fieldName string) bool {
	return strings.EqualFold(normalizeKey(mapKey), normalizeKey(fieldName))
}

func normalizeKey(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
