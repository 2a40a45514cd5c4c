package shaders

import (
	"strings"
)

// WithDefines returns src with one "#define NAME" line per name inserted
// right after the #version directive, or at the top when there is none.
func WithDefines(src string, names ...string) string {
	if len(names) == 0 {
		return src
	}

	var defs strings.Builder
	for _, n := range names {
		defs.WriteString("#define ")
		defs.WriteString(n)
		defs.WriteByte('\n')
	}

	trimmed := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(trimmed, "#version") {
		return defs.String() + src
	}
	lead := len(src) - len(trimmed)
	eol := strings.IndexByte(trimmed, '\n')
	if eol < 0 {
		return src + "\n" + defs.String()
	}
	cut := lead + eol + 1
	return src[:cut] + defs.String() + src[cut:]
}
