package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/delaneyj/domwire/pkg/rx"
)

// Getter lets a model resolve its own members instead of going through
// reflection.
type Getter interface {
	Member(name string) (any, bool)
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Member resolves name on obj: map keys, struct fields (by name, `bind` tag
// or exported form), methods, and length of sequences.
func Member(obj any, name string) (any, bool) {
	switch o := obj.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := o[name]
		return v, ok
	case Getter:
		return o.Member(name)
	}

	orig := reflect.ValueOf(obj)
	rv := orig
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if v.IsValid() {
			return v.Interface(), true
		}
	case reflect.Struct:
		if v, ok := structField(rv, name); ok {
			return v, true
		}
	case reflect.String:
		if name == "length" {
			return utf8.RuneCountInString(rv.String()), true
		}
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return rv.Len(), true
		}
	}

	for _, n := range []string{name, exported(name)} {
		if m := orig.MethodByName(n); m.IsValid() {
			return m.Interface(), true
		}
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (any, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("bind"); ok && tag == name {
			return rv.Field(i).Interface(), true
		}
	}
	for _, n := range []string{name, exported(name)} {
		f, ok := t.FieldByName(n)
		if !ok || !f.IsExported() {
			continue
		}
		// promoted through a nil embedded pointer
		v, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, true
		}
		return v.Interface(), true
	}
	return nil, false
}

// Index returns obj[idx] for sequences and maps. Out of range indexes and
// missing keys yield nil.
func Index(obj, idx any) (any, error) {
	if s, ok := idx.(string); ok {
		if v, ok := Member(obj, s); ok {
			return v, nil
		}
	}
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		f, ok := toNumber(idx)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("invalid index %v for %T", idx, obj)
		}
		i := int(f)
		if rv.Kind() == reflect.String {
			runes := []rune(rv.String())
			if i < 0 || i >= len(runes) {
				return nil, nil
			}
			return string(runes[i]), nil
		}
		if i < 0 || i >= rv.Len() {
			return nil, nil
		}
		return rv.Index(i).Interface(), nil
	case reflect.Map:
		kt := rv.Type().Key()
		kv := reflect.ValueOf(idx)
		if !kv.IsValid() {
			return nil, nil
		}
		if !kv.Type().ConvertibleTo(kt) {
			return nil, fmt.Errorf("invalid key %v for %T", idx, obj)
		}
		v := rv.MapIndex(kv.Convert(kt))
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	}
	if _, ok := idx.(string); ok {
		return nil, fmt.Errorf("%T has no member %v", obj, idx)
	}
	return nil, fmt.Errorf("%T is not indexable", obj)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Call invokes fn with args converted to its parameter types. Results are
// (), (v), (err) or (v, err).
func Call(fn any, args ...any) (any, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not callable", fn)
	}
	ft := fv.Type()
	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		var pt reflect.Type
		switch {
		case ft.IsVariadic() && i >= ft.NumIn()-1:
			pt = ft.In(ft.NumIn() - 1).Elem()
		case i < ft.NumIn():
			pt = ft.In(i)
		default:
			return nil, fmt.Errorf("too many arguments: want %d, got %d", ft.NumIn(), len(args))
		}
		v, err := coerce(a, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	for i := len(in); i < ft.NumIn(); i++ {
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			break
		}
		in = append(in, reflect.Zero(ft.In(i)))
	}

	out := fv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if ft.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[len(out)-1].Interface().(error)
		return out[0].Interface(), err
	}
}

func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if f, ok := toNumber(v); ok && isNumericKind(t.Kind()) {
		return reflect.ValueOf(f).Convert(t), nil
	}
	if rv.Type().ConvertibleTo(t) && t.Kind() != reflect.String {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func isNumericKind(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}

// Truthy reports whether v counts as true: nil, false, zero numbers, NaN and
// the empty string are false, everything else is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := toNumber(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// ToString formats v for display. nil is the empty string.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func toNumber(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func isInt(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func negate(v any) (any, error) {
	f, ok := toNumber(v)
	if !ok {
		return nil, fmt.Errorf("cannot negate %T", v)
	}
	if isInt(v) {
		return -int(f), nil
	}
	return -f, nil
}

// StrictEqual compares like ===, except that numbers of different Go types
// compare by value.
func StrictEqual(a, b any) bool {
	fa, okA := toNumber(a)
	fb, okB := toNumber(b)
	if okA && okB {
		return fa == fb
	}
	return rx.Same(a, b)
}

// LooseEqual compares like ==: additionally numbers equal their string form.
func LooseEqual(a, b any) bool {
	if StrictEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	_, aNum := toNumber(a)
	_, bNum := toNumber(b)
	if (aStr && bNum) || (aNum && bStr) {
		return ToString(a) == ToString(b)
	}
	return false
}

func binary(op string, l, r any) (any, error) {
	switch op {
	case "===":
		return StrictEqual(l, r), nil
	case "!==":
		return !StrictEqual(l, r), nil
	case "==":
		return LooseEqual(l, r), nil
	case "!=":
		return !LooseEqual(l, r), nil
	case "+":
		_, ls := l.(string)
		_, rs := r.(string)
		if ls || rs {
			return ToString(l) + ToString(r), nil
		}
	}

	fl, okL := toNumber(l)
	fr, okR := toNumber(r)
	if !okL || !okR {
		if sl, ok := l.(string); ok {
			if sr, ok := r.(string); ok {
				return compareStrings(op, sl, sr)
			}
		}
		return nil, fmt.Errorf("operator %s not defined on %T and %T", op, l, r)
	}

	ints := isInt(l) && isInt(r)
	num := func(f float64) any {
		if ints {
			return int(f)
		}
		return f
	}
	switch op {
	case "+":
		return num(fl + fr), nil
	case "-":
		return num(fl - fr), nil
	case "*":
		return num(fl * fr), nil
	case "/":
		if ints && fr != 0 && math.Mod(fl, fr) == 0 {
			return int(fl / fr), nil
		}
		return fl / fr, nil
	case "%":
		if ints {
			if fr == 0 {
				return nil, fmt.Errorf("integer modulo by zero")
			}
			return int(fl) % int(fr), nil
		}
		return math.Mod(fl, fr), nil
	case "<":
		return fl < fr, nil
	case "<=":
		return fl <= fr, nil
	case ">":
		return fl > fr, nil
	case ">=":
		return fl >= fr, nil
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

func compareStrings(op, l, r string) (any, error) {
	c := strings.Compare(l, r)
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return nil, fmt.Errorf("operator %s not defined on strings", op)
}
