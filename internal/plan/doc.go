// Package plan is the planning engine: a greedy allocator that splits a
// monthly savings budget across contribution categories, and a projector
// that compounds a portfolio forward month by month.
//
// Both are pure functions of their inputs. Callers resolve room balances,
// dependents and current balances elsewhere and pass plain values in.
package plan
