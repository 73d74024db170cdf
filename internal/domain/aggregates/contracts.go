package aggregates

// Contract is the published write surface of an aggregate: the operation
// names it reports to hooks and the order in which its transactions take
// row locks. Callers outside the aggregate never write the tables it owns.
type Contract struct {
	Name string
	// Tables written only through this aggregate.
	Tables []string
	// LockOrder lists tables in the order rows are locked within one write.
	LockOrder []string
	Ops       []string
	Notes     string
}

type Aggregate interface {
	Contract() Contract
}

// Owns reports whether op is one of the contract's write operations.
func (c Contract) Owns(op string) bool {
	for _, o := range c.Ops {
		if o == op {
			return true
		}
	}
	return false
}
