// Package symbol interns agent names into dense ids with fixed arities.
//
// The table is built during compilation and read-only afterwards. Arity is
// determined by the first occurrence of a symbol; every later occurrence must
// agree or compilation fails.
package symbol

import (
	"golang.org/x/text/unicode/norm"
)

// ID is a dense identifier for an interned agent symbol.
type ID int

// Interface is the reserved symbol marking a root net's external interface
// endpoints. It never participates in rules and is excluded from active-pair
// detection.
const Interface ID = 0

// InterfaceName is the surface spelling of the reserved interface symbol.
const InterfaceName = "$"

type entry struct {
	name  string
	arity int
}

// Table assigns each agent name a stable id and fixed arity.
//
// Identifiers are NFC-normalized before interning so visually identical
// spellings unify.
type Table struct {
	entries []entry
	index   map[string]ID
}

// NewTable creates a table with the reserved interface symbol pre-declared.
func NewTable() *Table {
	t := &Table{index: make(map[string]ID)}
	t.entries = append(t.entries, entry{name: InterfaceName, arity: 0})
	t.index[InterfaceName] = Interface
	return t
}

// Declare records a symbol with the given arity, or checks consistency if the
// symbol is already known. Returns an ArityMismatch error when a prior
// occurrence declared a different parameter count.
func (t *Table) Declare(name string, arity int) (ID, error) {
	name = norm.NFC.String(name)
	if id, ok := t.index[name]; ok {
		if declared := t.entries[id].arity; declared != arity {
			return 0, &Error{
				Code:     ErrCodeArityMismatch,
				Symbol:   name,
				Declared: declared,
				Got:      arity,
			}
		}
		return id, nil
	}
	id := ID(len(t.entries))
	t.entries = append(t.entries, entry{name: name, arity: arity})
	t.index[name] = id
	return id, nil
}

// Resolve returns the id of an already-declared symbol.
// Referencing an undeclared symbol is an UnknownAgent error.
func (t *Table) Resolve(name string) (ID, error) {
	name = norm.NFC.String(name)
	if id, ok := t.index[name]; ok {
		return id, nil
	}
	return 0, &Error{Code: ErrCodeUnknownAgent, Symbol: name}
}

// Name returns the surface name of an interned symbol.
func (t *Table) Name(id ID) string {
	return t.entries[id].name
}

// Arity returns the declared auxiliary-port count of an interned symbol.
func (t *Table) Arity(id ID) int {
	return t.entries[id].arity
}

// Len returns the number of interned symbols, including the reserved
// interface symbol.
func (t *Table) Len() int {
	return len(t.entries)
}
