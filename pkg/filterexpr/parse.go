// Package filterexpr turns list request filters written in a restricted CEL
// dialect into predicates that can be evaluated against in-memory rows.
//
// Only conjunctions of simple comparisons are accepted:
//
//	state == 'to_learn' && level >= 2 && word.startsWith('ap')
package filterexpr

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg wraps request DTOs that expose filter and order_by raw inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal value a field accepts.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
)

// Op represents a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpNE  Op = "!="
	OpGT  Op = ">"
	OpGTE Op = ">="
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// Field declares a filterable field and the operations allowed on it.
type Field struct {
	Kind ValueKind
	Ops  []Op
}

// Schema aggregates filtering and ordering rules for a resource.
type Schema struct {
	Filter map[string]Field
	Order  OrderSchema
}

// Query is a parsed filter plus ordering.
type Query struct {
	Predicates []Predicate
	Order      []OrderKey
}

// Parse reads the request filter and order_by against schema.
func Parse[M Msg](msg M, schema Schema) (Query, error) {
	preds, err := ParseFilter(msg.GetFilter(), schema.Filter)
	if err != nil {
		return Query{}, fmt.Errorf("filter: %w", err)
	}
	order, err := ParseOrder(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return Query{}, fmt.Errorf("order_by: %w", err)
	}
	return Query{Predicates: preds, Order: order}, nil
}

// ParseFilter parses a filter expression. An empty filter yields no predicates.
func ParseFilter(filter string, fields map[string]Field) ([]Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to convert AST: %w", err)
	}
	conjuncts, err := extractConjuncts(parsed.GetExpr())
	if err != nil {
		return nil, err
	}

	preds := make([]Predicate, 0, len(conjuncts))
	for _, expr := range conjuncts {
		pred, err := parseAtomicPredicate(expr)
		if err != nil {
			return nil, err
		}
		rule, ok := fields[pred.Field]
		if !ok {
			return nil, fmt.Errorf("field %q is not allowed", pred.Field)
		}
		if !slices.Contains(rule.Ops, pred.Op) {
			return nil, fmt.Errorf("operator %q is not allowed for field %q", string(pred.Op), pred.Field)
		}
		if err := validateLiteral(rule.Kind, pred.Op, pred.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", pred.Field, err)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func buildEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		celType, err := celTypeForKind(rule.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}

// extractConjuncts flattens nested && chains. Any other logical operator is
// rejected.
func extractConjuncts(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}

	switch call.Function {
	case "_&&_":
		if len(call.Args) < 2 || call.Target != nil {
			return nil, errors.New("logical AND must have at least two operands")
		}
		var result []*exprpb.Expr
		for _, arg := range call.Args {
			conjuncts, err := extractConjuncts(arg)
			if err != nil {
				return nil, err
			}
			result = append(result, conjuncts...)
		}
		return result, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

var binaryOps = map[string]Op{
	"_==_": OpEQ,
	"_!=_": OpNE,
	"_>_":  OpGT,
	"_>=_": OpGTE,
	"_<_":  OpLT,
	"_<=_": OpLTE,
}

func parseAtomicPredicate(expr *exprpb.Expr) (Predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return Predicate{}, errors.New("unsupported expression; expected comparison or function call")
	}
	if op, ok := binaryOps[call.Function]; ok {
		return parseBinaryPredicate(call, op)
	}
	switch call.Function {
	case "@in", "_in_":
		return parseInPredicate(call)
	case "startsWith":
		return parseStartsWith(call)
	default:
		return Predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}
}

func parseBinaryPredicate(call *exprpb.Expr_Call, op Op) (Predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return Predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}
	field, err := parseFieldIdent(call.Args[0])
	if err != nil {
		return Predicate{}, err
	}
	value, err := parseLiteral(call.Args[1])
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: field, Op: op, Value: value}, nil
}

func parseInPredicate(call *exprpb.Expr_Call) (Predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return Predicate{}, errors.New("in operator expects two operands")
	}
	field, err := parseFieldIdent(call.Args[0])
	if err != nil {
		return Predicate{}, err
	}
	value, err := parseLiteral(call.Args[1])
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: field, Op: OpIN, Value: value}, nil
}

func parseStartsWith(call *exprpb.Expr_Call) (Predicate, error) {
	if call.Target == nil || len(call.Args) != 1 {
		return Predicate{}, errors.New("startsWith must be called on a field with one argument")
	}
	field, err := parseFieldIdent(call.Target)
	if err != nil {
		return Predicate{}, err
	}
	value, err := parseLiteral(call.Args[0])
	if err != nil {
		return Predicate{}, err
	}
	if _, ok := value.(string); !ok {
		return Predicate{}, errors.New("startsWith requires a string literal argument")
	}
	return Predicate{Field: field, Op: OpSW, Value: value}, nil
}

func parseFieldIdent(expr *exprpb.Expr) (string, error) {
	ident := expr.GetIdentExpr()
	if ident == nil {
		return "", errors.New("left-hand side must be an identifier")
	}
	return ident.GetName(), nil
}

func parseLiteral(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
		}
	}

	if list := expr.GetListExpr(); list != nil {
		elements := list.GetElements()
		values := make([]string, len(elements))
		for i, elem := range elements {
			val, err := parseLiteral(elem)
			if err != nil {
				return nil, fmt.Errorf("list literal element %d: %w", i, err)
			}
			str, ok := val.(string)
			if !ok {
				return nil, errors.New("list literal elements must be strings")
			}
			values[i] = str
		}
		return values, nil
	}

	return nil, errors.New("right-hand side must be a literal or list literal")
}

func validateLiteral(kind ValueKind, op Op, value any) error {
	switch kind {
	case KindString:
		if op == OpIN {
			list, ok := value.([]string)
			if !ok {
				return fmt.Errorf("expected list of %s literals", kind)
			}
			if len(list) == 0 {
				return errors.New("list literal must not be empty")
			}
			return nil
		}
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	return nil
}
