package shell

import (
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Parse parses src as bash and collects its simple commands.
func Parse(src string) ([]Command, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(false))
	file, err := parser.Parse(strings.NewReader(src), "")
	if err != nil {
		return nil, err
	}

	c := &collector{printer: syntax.NewPrinter()}
	syntax.Walk(file, func(node syntax.Node) bool {
		if stmt, ok := node.(*syntax.Stmt); ok {
			c.stmt(stmt)
		}
		return true
	})
	return c.cmds, nil
}

type collector struct {
	cmds    []Command
	printer *syntax.Printer
}

func (c *collector) stmt(stmt *syntax.Stmt) {
	var cmd Command
	if call, ok := stmt.Cmd.(*syntax.CallExpr); ok {
		for _, w := range call.Args {
			cmd.Args = append(cmd.Args, c.word(w))
		}
	}
	for _, r := range stmt.Redirs {
		rd := Redirect{Op: r.Op.String()}
		if r.Word != nil {
			rd.Target = c.word(r.Word)
		}
		if r.Hdoc != nil {
			rd.Heredoc = strings.TrimSuffix(c.heredoc(r.Hdoc), "\n")
		}
		cmd.Redirects = append(cmd.Redirects, rd)
	}
	if len(cmd.Args) == 0 && len(cmd.Redirects) == 0 {
		return
	}
	c.cmds = append(c.cmds, cmd)
}

// word renders a word, reporting whether it is fully literal.
func (c *collector) word(w *syntax.Word) Word {
	var b strings.Builder
	literal := true
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			b.WriteString(unescapeUnquoted(p.Value))
		case *syntax.SglQuoted:
			if p.Dollar {
				b.WriteString(DecodeANSIC(p.Value))
			} else {
				b.WriteString(p.Value)
			}
		case *syntax.DblQuoted:
			s, ok := c.double(p)
			if !ok {
				literal = false
			}
			b.WriteString(s)
		default:
			literal = false
			b.WriteString(c.source(part))
		}
	}
	if !literal {
		return Word{Value: c.source(w), Literal: false}
	}
	return Word{Value: b.String(), Literal: true}
}

// double renders a double-quoted part. A command substitution of the form
// $(cat <<'EOF' ... EOF) counts as literal: it is the usual way to pass a
// multi-line commit message.
func (c *collector) double(q *syntax.DblQuoted) (string, bool) {
	var b strings.Builder
	for _, part := range q.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			b.WriteString(unescapeDouble(p.Value))
		case *syntax.CmdSubst:
			body, ok := c.catHeredoc(p)
			if !ok {
				return "", false
			}
			b.WriteString(body)
		default:
			return "", false
		}
	}
	return b.String(), true
}

func (c *collector) catHeredoc(cs *syntax.CmdSubst) (string, bool) {
	if len(cs.Stmts) != 1 {
		return "", false
	}
	stmt := cs.Stmts[0]
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || len(call.Args) != 1 || call.Args[0].Lit() != "cat" {
		return "", false
	}
	for _, r := range stmt.Redirs {
		if (r.Op == syntax.Hdoc || r.Op == syntax.DashHdoc) && r.Hdoc != nil {
			// $(...) strips trailing newlines.
			return strings.TrimRight(c.heredoc(r.Hdoc), "\n"), true
		}
	}
	return "", false
}

func (c *collector) heredoc(w *syntax.Word) string {
	var b strings.Builder
	for _, part := range w.Parts {
		if lit, ok := part.(*syntax.Lit); ok {
			b.WriteString(lit.Value)
			continue
		}
		b.WriteString(c.source(part))
	}
	return b.String()
}

func (c *collector) source(node syntax.Node) string {
	var buf bytes.Buffer
	if err := c.printer.Print(&buf, node); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
