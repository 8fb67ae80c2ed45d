package catalog

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// IDGenerator assigns product ids at creation time
type IDGenerator interface {
	NextID() int64
}

// MillisGenerator issues the current Unix time in milliseconds. Ids handed out
// by one generator are strictly increasing: a call within the same millisecond
// as the previous one gets previous+1. Nothing guards against a clock that
// moves backwards across restarts.
type MillisGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewMillisGenerator() *MillisGenerator {
	return &MillisGenerator{now: time.Now}
}

func (g *MillisGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// SnowflakeGenerator issues twitter snowflake ids (time, node and sequence bits)
type SnowflakeGenerator struct {
	node *snowflake.Node
}

func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrapf(err, "snowflake node %d", nodeID)
	}
	return &SnowflakeGenerator{node: node}, nil
}

func (g *SnowflakeGenerator) NextID() int64 {
	return g.node.Generate().Int64()
}

// NewIDGenerator returns the generator for storage.id_scheme
func NewIDGenerator(scheme string, nodeID int64) (IDGenerator, error) {
	switch scheme {
	case "", "millis":
		return NewMillisGenerator(), nil
	case "snowflake":
		return NewSnowflakeGenerator(nodeID)
	default:
		return nil, errors.Errorf("unknown id scheme %q", scheme)
	}
}
