package gen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Serial hands out unique business numbers such as order and withdrawal
// serials: a fixed prefix followed by a snowflake id.
type Serial struct {
	node   *snowflake.Node
	prefix string
}

func NewSerial(nodeID int64, prefix string) (*Serial, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to init snowflake node %d: %w", nodeID, err)
	}
	return &Serial{node: node, prefix: prefix}, nil
}

func (s *Serial) Next() string {
	return s.prefix + s.node.Generate().String()
}
