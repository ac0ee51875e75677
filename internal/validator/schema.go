package validator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andyballingall/validation-service/internal/position"
)

// printer renders messages for error kinds without a dedicated message.
var printer = message.NewPrinter(language.English)

type schemaAdapter struct {
	v    Validator
	docs map[string]any // registered schema documents by URL, used to recover keyword order
}

// NewSchema returns a Constructor that registers doc under loc with the compiler and
// compiles it. Validation errors are reported per failing keyword with a JSON Pointer
// to the offending value.
func NewSchema(c Compiler, loc string, doc JSONSchema) Constructor {
	return func(ctx context.Context) (Adapter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.AddSchema(loc, doc); err != nil {
			return nil, err
		}
		return NewRegistered(c, loc, doc)(ctx)
	}
}

// NewRegistered is like NewSchema for a doc already added to the compiler under loc.
// Adding every schema before compiling any lets schemas $ref each other.
func NewRegistered(c Compiler, loc string, doc JSONSchema) Constructor {
	return func(ctx context.Context) (Adapter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := c.Compile(loc)
		if err != nil {
			return nil, err
		}
		return &schemaAdapter{v: v, docs: map[string]any{loc: doc}}, nil
	}
}

// NewMetaSchema returns a Constructor for the metaschema of draft. The compiler ships
// the metaschemas itself; doc is the same document and is only used for messages.
func NewMetaSchema(c Compiler, draft Draft, doc JSONSchema) Constructor {
	return func(ctx context.Context) (Adapter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := c.Compile(string(draft))
		if err != nil {
			return nil, err
		}
		loc := strings.TrimSuffix(string(draft), "#")
		return &schemaAdapter{v: v, docs: map[string]any{loc: doc}}, nil
	}
}

func (a *schemaAdapter) SupportsSelection() bool {
	return true
}

func (a *schemaAdapter) Validate(item any) []Error {
	err := a.v.Validate(item)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Error{{Message: err.Error(), Detail: err}}
	}

	var out []Error
	seen := make(map[string]bool)
	a.collect(ve, &out, seen)
	if len(out) == 0 {
		out = append(out, Error{
			Message:  ve.ErrorKind.LocalizedString(printer),
			Position: position.Pointer(ve.InstanceLocation),
			Detail:   ve,
		})
	}
	return out
}

// collect appends one Error per leaf cause, depth first, skipping duplicates that
// arise when several subschemas reject the same value for the same reason.
func (a *schemaAdapter) collect(ve *jsonschema.ValidationError, out *[]Error, seen map[string]bool) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			a.collect(c, out, seen)
		}
		return
	}

	ptr := position.Pointer(ve.InstanceLocation)
	for _, msg := range a.messages(ve) {
		key := ptr.Value + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true
		*out = append(*out, Error{Message: msg, Position: ptr, Detail: ve.ErrorKind})
	}
}

func (a *schemaAdapter) messages(ve *jsonschema.ValidationError) []string {
	switch k := ve.ErrorKind.(type) {
	case *kind.Type:
		want := a.declaredTypes(ve.SchemaURL)
		if want == nil {
			want = k.Want
		}
		return []string{"must be " + strings.Join(want, ",")}
	case *kind.Required:
		return eachf("must have required property '%s'", k.Missing)
	case *kind.AdditionalProperties:
		return eachf("must NOT have additional properties '%s'", k.Properties)
	case *kind.Dependency:
		return dependencyMessages(k.Prop, k.Missing)
	case *kind.DependentRequired:
		return dependencyMessages(k.Prop, k.Missing)
	case *kind.Enum:
		return []string{"must be equal to one of the allowed values"}
	case *kind.Const:
		return []string{"must be equal to constant"}
	case *kind.MinLength:
		return []string{fmt.Sprintf("must NOT have fewer than %d characters", k.Want)}
	case *kind.MaxLength:
		return []string{fmt.Sprintf("must NOT have more than %d characters", k.Want)}
	case *kind.MinItems:
		return []string{fmt.Sprintf("must NOT have fewer than %d items", k.Want)}
	case *kind.MaxItems:
		return []string{fmt.Sprintf("must NOT have more than %d items", k.Want)}
	case *kind.MinProperties:
		return []string{fmt.Sprintf("must NOT have fewer than %d properties", k.Want)}
	case *kind.MaxProperties:
		return []string{fmt.Sprintf("must NOT have more than %d properties", k.Want)}
	case *kind.Minimum:
		return []string{"must be >= " + ratString(k.Want)}
	case *kind.Maximum:
		return []string{"must be <= " + ratString(k.Want)}
	case *kind.ExclusiveMinimum:
		return []string{"must be > " + ratString(k.Want)}
	case *kind.ExclusiveMaximum:
		return []string{"must be < " + ratString(k.Want)}
	case *kind.MultipleOf:
		return []string{"must be multiple of " + ratString(k.Want)}
	case *kind.Pattern:
		return []string{fmt.Sprintf("must match pattern %q", k.Want)}
	case *kind.Format:
		return []string{fmt.Sprintf("must match format %q", k.Want)}
	case *kind.UniqueItems:
		return []string{fmt.Sprintf("must NOT have duplicate items (items ## %d and %d are identical)",
			k.Duplicates[1], k.Duplicates[0])}
	case *kind.FalseSchema:
		return []string{"boolean schema is false"}
	}
	return []string{ve.ErrorKind.LocalizedString(printer)}
}

// declaredTypes returns the "type" keyword of the subschema at schemaURL in the order the
// schema author wrote it. The compiled schema only keeps a set of types.
func (a *schemaAdapter) declaredTypes(schemaURL string) []string {
	base, frag, _ := strings.Cut(schemaURL, "#")
	doc, ok := a.docs[base]
	if !ok {
		return nil
	}
	node, ok := lookupPointer(doc, frag)
	if !ok {
		return nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	switch t := obj["type"].(type) {
	case string:
		return []string{t}
	case []any:
		types := make([]string, 0, len(t))
		for _, v := range t {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			types = append(types, s)
		}
		return types
	}
	return nil
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func lookupPointer(doc any, ptr string) (any, bool) {
	if p, err := url.PathUnescape(ptr); err == nil {
		ptr = p
	}
	if ptr == "" {
		return doc, true
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, false
	}
	node := doc
	for _, tok := range strings.Split(ptr[1:], "/") {
		tok = pointerUnescaper.Replace(tok)
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[tok]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			node = n[i]
		default:
			return nil, false
		}
	}
	return node, true
}

func eachf(format string, values []string) []string {
	msgs := make([]string, len(values))
	for i, v := range values {
		msgs[i] = fmt.Sprintf(format, v)
	}
	return msgs
}

func dependencyMessages(prop string, missing []string) []string {
	msgs := make([]string, len(missing))
	for i, m := range missing {
		msgs[i] = fmt.Sprintf("must have property '%s' when property '%s' is present", m, prop)
	}
	return msgs
}

func ratString(r *big.Rat) string {
	if r == nil {
		return ""
	}
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}
