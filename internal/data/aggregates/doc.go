// Package aggregates implements the domain aggregate contracts on gorm.
//
// Aggregates compose the table repos in internal/data/repos and own the
// transaction of every write they expose.
package aggregates
