package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

func snowflakeNode() (*snowflake.Node, error) {
	nodeOnce.Do(func() {
		id := int64(1)
		if env := os.Getenv("SNOWFLAKE_NODE"); env != "" {
			if parsed, err := strconv.ParseInt(env, 10, 64); err == nil {
				id = parsed
			}
		}
		node, nodeErr = snowflake.NewNode(id)
	})
	return node, nodeErr
}

// NewSnowflakeID generates a time-ordered int64 identifier. IDs produced by
// the same process are strictly increasing, so they double as an
// insertion-order tie-break when rows share a sort key.
func NewSnowflakeID() (int64, error) {
	n, err := snowflakeNode()
	if err != nil {
		return 0, err
	}
	return n.Generate().Int64(), nil
}
