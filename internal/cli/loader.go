package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/Wybxc/zamuza/internal/ast"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Module decoding errors
	ErrCodeBadName = "E101" // Malformed name occurrence
	ErrCodeBadTerm = "E102" // Malformed term
	ErrCodeBadRule = "E103" // Malformed rule
	ErrCodeBadNet  = "E104" // Malformed net
)

// LoadError represents an error that occurred during module loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadModule reads a CUE module document and decodes it into an ast.Module.
//
// The parser frontend emits programs as structured CUE data, not program
// text: top-level "rules" and "nets" lists whose terms are tagged structs.
// A name occurrence is {polarity: "in" | "out", ident: string}; a term is
// either {name: ...} or {agent: string, args: [...]}; a rule carries "left"
// and "right" heads (agent plus name-only params), an optional "orientation"
// marker (">>" or "<<"), and a "body" equation list; a net carries "name",
// "interface", and "body".
func LoadModule(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("module not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading module: %v", err)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return decodeModule(value)
}

func decodeModule(v cue.Value) (*ast.Module, error) {
	var m ast.Module

	if rules := v.LookupPath(cue.ParsePath("rules")); rules.Exists() {
		iter, err := rules.List()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadRule, Message: fmt.Sprintf("rules is not a list: %v", err), Pos: rules.Pos()}
		}
		for iter.Next() {
			rule, err := decodeRule(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Rules = append(m.Rules, rule)
		}
	}

	if nets := v.LookupPath(cue.ParsePath("nets")); nets.Exists() {
		iter, err := nets.List()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadNet, Message: fmt.Sprintf("nets is not a list: %v", err), Pos: nets.Pos()}
		}
		for iter.Next() {
			net, err := decodeNet(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Nets = append(m.Nets, net)
		}
	}

	if len(m.Rules) == 0 && len(m.Nets) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "module declares no rules and no nets", Pos: v.Pos()}
	}

	return &m, nil
}

func decodeRule(v cue.Value) (ast.Rule, error) {
	var rule ast.Rule

	left, err := decodeRuleTerm(v.LookupPath(cue.ParsePath("left")))
	if err != nil {
		return rule, err
	}
	right, err := decodeRuleTerm(v.LookupPath(cue.ParsePath("right")))
	if err != nil {
		return rule, err
	}
	rule.TermPair = ast.RuleTermPair{Left: left, Right: right}

	if o := v.LookupPath(cue.ParsePath("orientation")); o.Exists() {
		s, err := o.String()
		if err != nil {
			return rule, &LoadError{Code: ErrCodeBadRule, Message: fmt.Sprintf("orientation: %v", err), Pos: o.Pos()}
		}
		switch s {
		case ">>":
			rule.TermPair.Orientation = ast.LeftToRight
		case "<<":
			rule.TermPair.Orientation = ast.RightToLeft
		default:
			return rule, &LoadError{Code: ErrCodeBadRule, Message: fmt.Sprintf("orientation must be \">>\" or \"<<\", got %q", s), Pos: o.Pos()}
		}
	}

	rule.Equations, err = decodeEquations(v.LookupPath(cue.ParsePath("body")))
	if err != nil {
		return rule, err
	}
	return rule, nil
}

func decodeRuleTerm(v cue.Value) (ast.RuleTerm, error) {
	var rt ast.RuleTerm
	if !v.Exists() {
		return rt, &LoadError{Code: ErrCodeBadRule, Message: "rule head missing", Pos: v.Pos()}
	}

	agent, err := stringField(v, "agent", ErrCodeBadRule)
	if err != nil {
		return rt, err
	}
	rt.Agent = agent

	if params := v.LookupPath(cue.ParsePath("params")); params.Exists() {
		iter, err := params.List()
		if err != nil {
			return rt, &LoadError{Code: ErrCodeBadRule, Message: fmt.Sprintf("params of %s is not a list: %v", agent, err), Pos: params.Pos()}
		}
		for iter.Next() {
			n, err := decodeName(iter.Value())
			if err != nil {
				return rt, err
			}
			rt.Body = append(rt.Body, n)
		}
	}
	return rt, nil
}

func decodeNet(v cue.Value) (ast.Net, error) {
	var net ast.Net

	name, err := stringField(v, "name", ErrCodeBadNet)
	if err != nil {
		return net, err
	}
	net.Name = name

	if iface := v.LookupPath(cue.ParsePath("interface")); iface.Exists() {
		iter, err := iface.List()
		if err != nil {
			return net, &LoadError{Code: ErrCodeBadNet, Message: fmt.Sprintf("interface of net %s is not a list: %v", name, err), Pos: iface.Pos()}
		}
		for iter.Next() {
			n, err := decodeName(iter.Value())
			if err != nil {
				return net, err
			}
			net.Interfaces = append(net.Interfaces, n)
		}
	}

	net.Equations, err = decodeEquations(v.LookupPath(cue.ParsePath("body")))
	if err != nil {
		return net, err
	}
	return net, nil
}

func decodeEquations(v cue.Value) ([]ast.Equation, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadTerm, Message: fmt.Sprintf("body is not a list: %v", err), Pos: v.Pos()}
	}
	var out []ast.Equation
	for iter.Next() {
		ev := iter.Value()
		left, err := decodeTerm(ev.LookupPath(cue.ParsePath("left")))
		if err != nil {
			return nil, err
		}
		right, err := decodeTerm(ev.LookupPath(cue.ParsePath("right")))
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Equation{Left: left, Right: right})
	}
	return out, nil
}

func decodeTerm(v cue.Value) (ast.Term, error) {
	if !v.Exists() {
		return ast.Term{}, &LoadError{Code: ErrCodeBadTerm, Message: "equation side missing", Pos: v.Pos()}
	}

	if nv := v.LookupPath(cue.ParsePath("name")); nv.Exists() {
		n, err := decodeName(nv)
		if err != nil {
			return ast.Term{}, err
		}
		return ast.Term{Name: &n}, nil
	}

	agent, err := stringField(v, "agent", ErrCodeBadTerm)
	if err != nil {
		return ast.Term{}, err
	}
	a := &ast.Agent{Name: agent}
	if args := v.LookupPath(cue.ParsePath("args")); args.Exists() {
		iter, err := args.List()
		if err != nil {
			return ast.Term{}, &LoadError{Code: ErrCodeBadTerm, Message: fmt.Sprintf("args of %s is not a list: %v", agent, err), Pos: args.Pos()}
		}
		for iter.Next() {
			sub, err := decodeTerm(iter.Value())
			if err != nil {
				return ast.Term{}, err
			}
			a.Body = append(a.Body, sub)
		}
	}
	return ast.Term{Agent: a}, nil
}

func decodeName(v cue.Value) (ast.Name, error) {
	var n ast.Name

	pol, err := stringField(v, "polarity", ErrCodeBadName)
	if err != nil {
		return n, err
	}
	switch pol {
	case "in":
		n.Polarity = ast.In
	case "out":
		n.Polarity = ast.Out
	default:
		return n, &LoadError{Code: ErrCodeBadName, Message: fmt.Sprintf("polarity must be \"in\" or \"out\", got %q", pol), Pos: v.Pos()}
	}

	n.Ident, err = stringField(v, "ident", ErrCodeBadName)
	if err != nil {
		return n, err
	}
	return n, nil
}

func stringField(v cue.Value, field, code string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &LoadError{Code: code, Message: fmt.Sprintf("missing field %q", field), Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &LoadError{Code: code, Message: fmt.Sprintf("field %q: %v", field, err), Pos: fv.Pos()}
	}
	return s, nil
}
