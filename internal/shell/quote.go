package shell

import (
	"strconv"
	"strings"
)

// unescapeUnquoted removes backslash escapes from an unquoted literal.
// A backslash-newline pair is a line continuation and disappears.
func unescapeUnquoted(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == '\n' {
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unescapeDouble removes the escapes that are special inside double quotes.
func unescapeDouble(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '$', '`', '"', '\\':
				i++
			case '\n':
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// DecodeANSIC expands the escapes of a $'...' string body.
func DecodeANSIC(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'e', 'E':
			b.WriteByte(0x1b)
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\', '\'', '"', '?':
			b.WriteByte(c)
		case 'x':
			j := i + 1
			for j < len(s) && j < i+3 && isHex(s[j]) {
				j++
			}
			if j == i+1 {
				b.WriteString(`\x`)
				continue
			}
			n, _ := strconv.ParseUint(s[i+1:j], 16, 8)
			b.WriteByte(byte(n))
			i = j - 1
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 8, 16)
			b.WriteByte(byte(n))
			i = j - 1
		default:
			b.WriteByte('\\')
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Split is the fallback tokenizer for input the bash parser rejects. It
// honours single and double quotes and backslash escapes, splits commands
// on unquoted ; | & and newlines, and recognises bare redirect operators.
// Tokens containing $ or ` outside single quotes are marked non-literal.
func Split(src string) []Command {
	var (
		cmds    []Command
		cur     Command
		tok     strings.Builder
		inTok   bool
		literal = true
		quote   byte
		pending string
	)
	flushTok := func() {
		if !inTok {
			return
		}
		w := Word{Value: tok.String(), Literal: literal}
		if pending != "" {
			cur.Redirects = append(cur.Redirects, Redirect{Op: pending, Target: w})
			pending = ""
		} else {
			cur.Args = append(cur.Args, w)
		}
		tok.Reset()
		inTok = false
		literal = true
	}
	flushCmd := func() {
		flushTok()
		if len(cur.Args) > 0 || len(cur.Redirects) > 0 {
			cmds = append(cmds, cur)
		}
		cur = Command{}
		pending = ""
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote == '\'':
			if c == '\'' {
				quote = 0
				continue
			}
			tok.WriteByte(c)
		case quote == '"':
			switch c {
			case '"':
				quote = 0
				continue
			case '\\':
				if i+1 < len(src) && strings.IndexByte("$`\"\\", src[i+1]) >= 0 {
					i++
					c = src[i]
				}
			case '$', '`':
				literal = false
			}
			tok.WriteByte(c)
		case c == '\\':
			inTok = true
			if i+1 < len(src) {
				i++
				if src[i] != '\n' {
					tok.WriteByte(src[i])
				}
			}
		case c == '\'' || c == '"':
			inTok = true
			quote = c
		case c == ' ' || c == '\t':
			flushTok()
		case c == ';' || c == '|' || c == '&' || c == '\n' || c == '(' || c == ')':
			flushCmd()
		case c == '<' || c == '>':
			flushTok()
			op := string(c)
			for i+1 < len(src) && (src[i+1] == '>' || src[i+1] == '<') && len(op) < 3 {
				i++
				op += string(src[i])
			}
			pending = op
		default:
			if c == '$' || c == '`' {
				literal = false
			}
			inTok = true
			tok.WriteByte(c)
		}
	}
	flushCmd()
	return cmds
}
