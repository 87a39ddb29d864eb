// Package ir holds the self-describing value tree a token stream decodes
// into when no concrete type is known.
//
// A tree records everything needed to serialize back to the exact tokens it
// came from: names, variant indexes, length hints and entry order. Trees are
// what fixture files decode into and what the canonical JSON in golden files
// is rendered from.
//
// Key design constraints:
//   - Map entries keep stream order; trees never reorder data
//   - Seq and Map remember whether their opening token carried a hint
//   - MarshalCanonical is the only rendering used for golden comparisons
package ir
