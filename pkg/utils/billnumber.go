package utils

import (
	"github.com/bwmarrin/snowflake"
)

// BillNumberGenerator issues globally unique, time-ordered bill numbers.
// Snowflake ids embed a millisecond timestamp plus node and sequence bits, so
// concurrent settlements never collide the way a naive counter would.
type BillNumberGenerator struct {
	node *snowflake.Node
}

// NewBillNumberGenerator creates a generator for the given node id (0-1023).
func NewBillNumberGenerator(nodeID int64) (*BillNumberGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &BillNumberGenerator{node: node}, nil
}

// Next returns the next bill number.
func (g *BillNumberGenerator) Next() string {
	return "BILL-" + g.node.Generate().String()
}
