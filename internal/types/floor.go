package types

// Floor canonicalizes inference-variable names across a batch of types to a
// minimal deterministic scheme ('a, 'b, ...) in order of first occurrence,
// so that printed or compared signatures are stable regardless of the order
// fresh variables were allocated.
func Floor(ts []Type) []Type {
	names := make(map[string]string)
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = floorType(t, names)
	}
	return out
}

// FloorOne floors a single type.
func FloorOne(t Type) Type {
	return floorType(t, make(map[string]string))
}

func floorType(t Type, names map[string]string) Type {
	switch t := t.(type) {
	case *Var:
		name, ok := names[t.Name]
		if !ok {
			name = floorName(len(names))
			names[t.Name] = name
		}
		return &Var{Name: name}
	case *Arrow:
		return &Arrow{
			Param:  floorType(t.Param, names),
			Result: floorType(t.Result, names),
		}
	case *App:
		return &App{Ctor: t.Ctor, Arg: floorType(t.Arg, names)}
	case *Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = floorType(e, names)
		}
		return &Tuple{Elems: elems}
	case *Record:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: floorType(f.Type, names)}
		}
		return &Record{Fields: fields}
	default:
		return t
	}
}

// floorName yields a, b, ..., z, aa, ab, ... for successive indices.
func floorName(i int) string {
	name := ""
	for {
		name = string(rune('a'+i%26)) + name
		i = i/26 - 1
		if i < 0 {
			return name
		}
	}
}
