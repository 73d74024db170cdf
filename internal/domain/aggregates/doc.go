// Package aggregates defines the write boundaries of the roadmap domain.
//
// Contracts here carry no persistence details. Each aggregate owns one
// transaction per write method and enforces its invariants inside it.
package aggregates
