package kernel

import (
	"fmt"
	"strconv"
	"strings"
)

// PrettyPrint returns a human-readable rendering of a set of top-level
// items, used by diagnostics and tests.
func PrettyPrint(items []Item) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(prettyItem(item))
	}
	return b.String()
}

func prettyItem(item Item) string {
	switch it := item.(type) {
	case *ValueDef:
		return fmt.Sprintf("val %s = %s", it.Name, prettyExpr(it.Body, 1))
	case *FuncDef:
		header := "fn"
		if it.Recursive {
			header = "rec fn"
		}
		sig := fmt.Sprintf("%s %s(%s)", header, it.Name, strings.Join(it.Params, ", "))
		if len(it.FreeVars) > 0 {
			sig += fmt.Sprintf(" [%s]", strings.Join(it.FreeVars, ", "))
		}
		return fmt.Sprintf("%s =\n%s%s", sig, indent(1), prettyExpr(it.Body, 1))
	default:
		return fmt.Sprintf("<unknown item %T>", item)
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func prettyExpr(expr Expr, depth int) string {
	switch e := expr.(type) {
	case *Lit:
		return prettyLit(e)

	case *Var:
		return e.Name

	case *List:
		return "[" + prettyExprList(e.Elems, depth) + "]"

	case *Tuple:
		return "(" + prettyExprList(e.Elems, depth) + ")"

	case *Record:
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, prettyExpr(f.Value, depth))
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case *FieldAccess:
		return fmt.Sprintf("%s.%s", prettyExpr(e.Target, depth), e.Name)

	case *Binop:
		return fmt.Sprintf("(%s %s %s)", prettyExpr(e.Left, depth), e.Op, prettyExpr(e.Right, depth))

	case *Call:
		return fmt.Sprintf("%s(%s)", prettyExpr(e.Fn, depth), prettyExprList(e.Args, depth))

	case *Lambda:
		return fmt.Sprintf("\\(%s) %s", strings.Join(e.Params, ", "), prettyExpr(e.Body, depth))

	case *If:
		return fmt.Sprintf("if %s\n%sthen %s\n%selse %s",
			prettyExpr(e.Cond, depth),
			indent(depth), prettyExpr(e.Then, depth+1),
			indent(depth), prettyExpr(e.Else, depth+1))

	case *LetValue:
		return fmt.Sprintf("let %s = %s\n%s%s",
			e.Name, prettyExpr(e.Body, depth),
			indent(depth), prettyExpr(e.Rest, depth))

	case *LetFunc:
		header := "let fn"
		if e.Recursive {
			header = "let rec fn"
		}
		sig := fmt.Sprintf("%s %s(%s)", header, e.Name, strings.Join(e.Params, ", "))
		if len(e.FreeVars) > 0 {
			sig += fmt.Sprintf(" [%s]", strings.Join(e.FreeVars, ", "))
		}
		return fmt.Sprintf("%s = %s\n%s%s",
			sig, prettyExpr(e.Body, depth+1),
			indent(depth), prettyExpr(e.Rest, depth))

	case *LetPattern:
		return fmt.Sprintf("let %s = %s\n%s%s",
			prettyPat(e.Pat), prettyExpr(e.Body, depth),
			indent(depth), prettyExpr(e.Rest, depth))

	case *Case:
		var b strings.Builder
		b.WriteString("case " + prettyExpr(e.Scrut, depth))
		for _, arm := range e.Arms {
			b.WriteString("\n" + indent(depth) + "| " + prettyPat(arm.Pat) + " = " + prettyExpr(arm.Result, depth+1))
		}
		if e.Default != nil {
			binder := e.DefaultName
			if binder == "" {
				binder = "_"
			}
			b.WriteString("\n" + indent(depth) + "| " + binder + " = " + prettyExpr(e.Default, depth+1))
		}
		return b.String()

	default:
		return fmt.Sprintf("<unknown expr %T>", expr)
	}
}

func prettyExprList(exprs []Expr, depth int) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = prettyExpr(e, depth)
	}
	return strings.Join(parts, ", ")
}

func prettyLit(l *Lit) string {
	switch l.Kind {
	case LitUnit:
		return "()"
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitString:
		return strconv.Quote(l.Str)
	default:
		return "<unknown literal>"
	}
}

func prettyPat(pat Pattern) string {
	switch p := pat.(type) {
	case *PatWild:
		return "_"
	case *PatVar:
		return p.Name
	case *PatLit:
		return prettyLit(p.Lit)
	case *PatTuple:
		parts := make([]string, len(p.Elems))
		for i, sub := range p.Elems {
			parts[i] = prettyPat(sub)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *PatList:
		parts := make([]string, len(p.Elems))
		for i, sub := range p.Elems {
			parts[i] = prettyPat(sub)
		}
		s := "[" + strings.Join(parts, ", ")
		if p.Rest != nil {
			s += " | " + prettyPat(p.Rest)
		}
		return s + "]"
	case *PatRecord:
		parts := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			parts[i] = f.Field
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("<unknown pattern %T>", pat)
	}
}
