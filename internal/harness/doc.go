// Package harness runs YAML-defined pipeline scenarios.
//
// A scenario bundles a contract text, the canned provider responses that
// replace a live reasoning service, and expectations over the synthesized
// document. Scenarios exercise the real pipeline end to end: response
// parsing, record validation, dependency cleaning, automaton synthesis,
// and contract validation all run exactly as in production, only the
// provider is scripted.
//
// Golden comparison snapshots the synthesized contract with its
// nondeterministic fields (run id, creation timestamp) cleared, so the
// same scenario always produces byte-identical output.
package harness
