package engine

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"

	"github.com/dop251/goja"

	lerrors "github.com/wippyai/tsload/errors"
)

// The head shares a line with the first line of module code so reported
// line numbers match the translated source.
const (
	wrapperHead = "(function (exports, require, module, __filename, __dirname) {"
	wrapperTail = "\n})"
)

// Wrap surrounds translated CommonJS text with the module function wrapper.
func Wrap(code []byte) string {
	var b bytes.Buffer
	b.Grow(len(wrapperHead) + len(code) + len(wrapperTail))
	b.WriteString(wrapperHead)
	b.Write(code)
	b.WriteString(wrapperTail)
	return b.String()
}

// Compile wraps code and compiles it under path. A syntax error in the
// translated text is reported as a TranslationError.
func Compile(path string, code []byte) (*goja.Program, error) {
	src := Wrap(code)
	prog, err := goja.Compile(path, src, false)
	if err == nil {
		return prog, nil
	}

	terr := &lerrors.TranslationError{Path: path, Message: err.Error()}
	var serr *goja.CompilerSyntaxError
	if errors.As(err, &serr) {
		terr.Message = serr.Message
		if serr.File != nil {
			terr.Position = position(src, serr.Offset)
		} else {
			terr.Position = parsePosition(serr.Message)
		}
	}
	return nil, terr
}

var lineCol = regexp.MustCompile(`Line (\d+):(\d+)`)

// parsePosition reads the "Line L:C" marker the goja parser puts in its
// messages. The parser's column is 1-based.
func parsePosition(msg string) lerrors.Position {
	m := lineCol.FindStringSubmatch(msg)
	if m == nil {
		return lerrors.Position{}
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	col--
	if line == 1 {
		col -= len(wrapperHead)
	}
	if col < 0 {
		col = 0
	}
	return lerrors.Position{Line: line, Column: col}
}

// position converts a byte offset in the wrapped source into a position in
// the unwrapped code.
func position(src string, offset int) lerrors.Position {
	if offset < 0 {
		return lerrors.Position{}
	}
	if offset > len(src) {
		offset = len(src)
	}
	line, col := 1, 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	if line == 1 {
		col -= len(wrapperHead)
		if col < 0 {
			col = 0
		}
	}
	return lerrors.Position{Line: line, Column: col}
}
