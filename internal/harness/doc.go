// Package harness runs conformance scenarios against the reduction engine.
//
// A scenario is a YAML file naming a module document and the outcome its
// reduction must produce: the interface values at normal form, the firing
// count, or a stuck/budget failure. Each scenario runs against a fresh
// in-memory journal, so its firing trace can be asserted on and compared
// against golden files.
//
// Scenarios exercise the real engine end to end: the module is loaded,
// compiled, and reduced exactly as `zamuza run` would, with a fixed run token
// so traces are reproducible.
package harness
