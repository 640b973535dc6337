package envelope

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when an envelope is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// View gives discriminators cheap field access to a raw envelope without
// decoding it. Paths use gjson syntax, e.g. "detail.userId".
type View struct {
	raw []byte
}

// NewView validates raw and returns a View over it.
func NewView(raw []byte) (View, error) {
	if !gjson.ValidBytes(raw) {
		return View{}, ErrInvalidJSON
	}
	return View{raw: raw}, nil
}

// Has reports whether path exists.
func (v View) Has(path string) bool {
	return gjson.GetBytes(v.raw, path).Exists()
}

// String returns the string at path. It reports false when the path is
// missing or holds another JSON type.
func (v View) String(path string) (string, bool) {
	r := gjson.GetBytes(v.raw, path)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// Int returns the number at path truncated to an integer.
func (v View) Int(path string) (int64, bool) {
	r := gjson.GetBytes(v.raw, path)
	if r.Type != gjson.Number {
		return 0, false
	}
	return r.Int(), true
}

// Raw returns the raw JSON at path, quotes included for strings.
func (v View) Raw(path string) ([]byte, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() {
		return nil, false
	}
	return []byte(r.Raw), true
}
