package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Print renders the target forms as module source text.
func Print(forms []Form) string {
	var p printer
	for i, form := range forms {
		if i > 0 {
			p.out.WriteString("\n")
		}
		p.form(form)
	}
	return p.out.String()
}

type printer struct {
	out strings.Builder
}

func (p *printer) form(form Form) {
	switch f := form.(type) {
	case *ModuleAttr:
		fmt.Fprintf(&p.out, "-module(%s).\n", f.Name)

	case *ExportAttr:
		sigs := make([]string, len(f.Sigs))
		for i, s := range f.Sigs {
			sigs[i] = fmt.Sprintf("%s/%d", atomName(s.Name), s.Arity)
		}
		fmt.Fprintf(&p.out, "-export([%s]).\n", strings.Join(sigs, ", "))

	case *FuncDecl:
		params := make([]string, len(f.Params))
		for i, name := range f.Params {
			params[i] = varName(name)
		}
		fmt.Fprintf(&p.out, "%s(%s) ->\n", atomName(f.Name), strings.Join(params, ", "))
		p.body(f.Body, 1)
		p.out.WriteString(".\n")
	}
}

// body renders a comma-separated expression sequence, one per line.
func (p *printer) body(exprs []Expr, depth int) {
	for i, e := range exprs {
		p.out.WriteString(indent(depth))
		p.stmt(e, depth)
		if i < len(exprs)-1 {
			p.out.WriteString(",\n")
		}
	}
}

func indent(depth int) string {
	return strings.Repeat("    ", depth)
}

// stmt renders an expression in statement position, where a binary
// operation needs no grouping parentheses.
func (p *printer) stmt(e Expr, depth int) {
	if bin, ok := e.(*BinOp); ok {
		p.expr(bin.Left, depth)
		fmt.Fprintf(&p.out, " %s ", bin.Op)
		p.expr(bin.Right, depth)
		return
	}
	p.expr(e, depth)
}

func (p *printer) expr(e Expr, depth int) {
	switch e := e.(type) {
	case *AtomLit:
		p.out.WriteString(atomName(e.Name))

	case *IntLit:
		p.out.WriteString(strconv.FormatInt(e.Value, 10))

	case *FloatLit:
		p.out.WriteString(floatText(e.Value))

	case *StringLit:
		p.out.WriteString(stringText(e.Value))

	case *VarRef:
		p.out.WriteString(varName(e.Name))

	case *ListLit:
		p.out.WriteString("[")
		p.exprList(e.Elems, depth)
		if e.Tail != nil {
			p.out.WriteString(" | ")
			p.expr(e.Tail, depth)
		}
		p.out.WriteString("]")

	case *TupleLit:
		p.out.WriteString("{")
		p.exprList(e.Elems, depth)
		p.out.WriteString("}")

	case *MapLit:
		p.out.WriteString("#{")
		for i, f := range e.Fields {
			if i > 0 {
				p.out.WriteString(", ")
			}
			assoc := "=>"
			if f.Exact {
				assoc = ":="
			}
			fmt.Fprintf(&p.out, "%s %s ", atomName(f.Key), assoc)
			p.expr(f.Value, depth)
		}
		p.out.WriteString("}")

	case *MapGet:
		fmt.Fprintf(&p.out, "maps:get(%s, ", atomName(e.Key))
		p.expr(e.Target, depth)
		p.out.WriteString(")")

	case *BinOp:
		p.out.WriteString("(")
		p.expr(e.Left, depth)
		fmt.Fprintf(&p.out, " %s ", e.Op)
		p.expr(e.Right, depth)
		p.out.WriteString(")")

	case *Apply:
		p.callee(e.Fn, depth)
		p.out.WriteString("(")
		p.exprList(e.Args, depth)
		p.out.WriteString(")")

	case *RemoteCall:
		fmt.Fprintf(&p.out, "%s:%s(", e.Module, e.Func)
		p.exprList(e.Args, depth)
		p.out.WriteString(")")

	case *FunRef:
		fmt.Fprintf(&p.out, "fun %s/%d", atomName(e.Name), e.Arity)

	case *Fun:
		params := make([]string, len(e.Params))
		for i, name := range e.Params {
			params[i] = varName(name)
		}
		fmt.Fprintf(&p.out, "fun(%s) ->\n", strings.Join(params, ", "))
		p.body(e.Body, depth+1)
		p.out.WriteString("\n" + indent(depth) + "end")

	case *Match:
		p.expr(e.Left, depth)
		p.out.WriteString(" = ")
		p.expr(e.Right, depth)

	case *CaseExpr:
		p.out.WriteString("case ")
		p.stmt(e.Scrut, depth)
		p.out.WriteString(" of\n")
		for i, clause := range e.Clauses {
			if i > 0 {
				p.out.WriteString(";\n")
			}
			p.out.WriteString(indent(depth + 1))
			p.expr(clause.Pat, depth+1)
			p.out.WriteString(" ->\n")
			p.body(clause.Body, depth+2)
		}
		p.out.WriteString("\n" + indent(depth) + "end")

	case *Block:
		p.out.WriteString("begin\n")
		p.body(e.Exprs, depth+1)
		p.out.WriteString("\n" + indent(depth) + "end")

	case *Raw:
		p.out.WriteString(e.Text)

	default:
		fmt.Fprintf(&p.out, "%%! unhandled node %T", e)
	}
}

// callee renders an expression in call-head position, parenthesizing forms
// the target grammar will not accept bare there.
func (p *printer) callee(e Expr, depth int) {
	switch e.(type) {
	case *Fun, *FunRef, *Block, *CaseExpr, *BinOp:
		p.out.WriteString("(")
		p.expr(e, depth)
		p.out.WriteString(")")
	default:
		p.expr(e, depth)
	}
}

func (p *printer) exprList(exprs []Expr, depth int) {
	for i, e := range exprs {
		if i > 0 {
			p.out.WriteString(", ")
		}
		p.expr(e, depth)
	}
}

// varName renders an identifier per the target's variable convention: the
// first letter is uppercased, leading underscores are preserved.
func varName(name string) string {
	runes := []rune(name)
	for i, ch := range runes {
		if unicode.IsLetter(ch) {
			runes[i] = unicode.ToUpper(ch)
			break
		}
		if ch != '_' {
			break
		}
	}
	return string(runes)
}

// atomName quotes an atom unless it is safe bare.
func atomName(name string) string {
	safe := name != ""
	for i, ch := range name {
		if i == 0 {
			safe = safe && ch >= 'a' && ch <= 'z'
			continue
		}
		ok := ch == '_' || ch == '@' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		safe = safe && ok
	}
	if safe {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", `\'`) + "'"
}

func floatText(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func stringText(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range v {
		switch ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}
