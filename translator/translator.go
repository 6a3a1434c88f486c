package translator

import (
	"path/filepath"
	"strings"
)

// Translator converts source text at path into executable CommonJS text.
type Translator interface {
	Translate(src []byte, path string) ([]byte, error)
}

// Func adapts an ordinary function to the Translator interface.
type Func func(src []byte, path string) ([]byte, error)

// Translate calls f(src, path).
func (f Func) Translate(src []byte, path string) ([]byte, error) {
	return f(src, path)
}

// Identity returns source unchanged. Useful for plain CommonJS trees.
var Identity Translator = Func(func(src []byte, _ string) ([]byte, error) {
	return src, nil
})

// ByExtension dispatches to a translator chosen by file extension, falling
// back to Default when no entry matches.
type ByExtension struct {
	Default    Translator
	Extensions map[string]Translator
}

// Translate implements Translator.
func (b *ByExtension) Translate(src []byte, path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := b.Extensions[ext]; ok && t != nil {
		return t.Translate(src, path)
	}
	if b.Default == nil {
		return src, nil
	}
	return b.Default.Translate(src, path)
}
