package compiler

import (
	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/symbol"
)

// CheckModule compiles the module and elaborates every net, collecting all
// errors instead of stopping at the first. A rule that fails to compile does
// not suppress diagnostics for later rules or nets; its symbols, if any were
// declared before the failure, stay declared so arity errors still surface.
//
// Returns nil when the module is clean.
func CheckModule(m ast.Module) []error {
	var errs []error

	syms := symbol.NewTable()
	rules := newRuleTable()
	for _, rule := range m.Rules {
		tmpl, err := compileRule(syms, rule)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := rules.insert(tmpl); err != nil {
			errs = append(errs, err)
		}
	}

	for _, net := range m.Nets {
		if err := declareNetSymbols(syms, net); err != nil {
			errs = append(errs, err)
		}
	}

	p := &Program{Symbols: syms, Rules: rules, Module: m}
	for _, net := range m.Nets {
		if _, err := p.buildNet(net); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
