package style

import "reflect"

// isNil reports whether s is nil or a typed nil pointer.
func isNil(s Style) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// fill copies every field set in src into the unset fields of dst. Both must
// be pointers to the same value object type. Copied fields get fresh
// pointers so dst never aliases src.
func fill(dst, src Style) {
	if isNil(dst) || isNil(src) {
		return
	}
	d := reflect.ValueOf(dst).Elem()
	s := reflect.ValueOf(src).Elem()
	if d.Type() != s.Type() {
		return
	}
	for i := 0; i < d.NumField(); i++ {
		df, sf := d.Field(i), s.Field(i)
		if df.Kind() != reflect.Ptr || !df.IsNil() || sf.IsNil() {
			continue
		}
		cp := reflect.New(sf.Elem().Type())
		cp.Elem().Set(sf.Elem())
		df.Set(cp)
	}
}

// Clone returns a deep copy of s, or nil for a nil style.
func Clone(s Style) Style {
	if isNil(s) {
		return nil
	}
	out := newOf(s.Kind())
	fill(out, s)
	return out
}

// Merge combines layers field by field; earlier layers win. Nil layers and
// layers of another kind are skipped. The result is never nil for a valid kind.
func Merge(kind Kind, layers ...Style) Style {
	out := newOf(kind)
	for _, l := range layers {
		if isNil(l) || l.Kind() != kind {
			continue
		}
		fill(out, l)
	}
	return out
}

// IsEmpty reports whether no field of s is set.
func IsEmpty(s Style) bool {
	if isNil(s) {
		return true
	}
	v := reflect.ValueOf(s).Elem()
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); f.Kind() == reflect.Ptr && !f.IsNil() {
			return false
		}
	}
	return true
}
