package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// Entity id prefixes keep ids self-describing in logs and API payloads.
const (
	PrefixUser     = "usr"
	PrefixRequest  = "req"
	PrefixCategory = "cat"
)

// NewID generates a prefixed, globally unique, k-sortable id such as
// "usr_2bXk...". The suffix is a KSUID so ids sort by creation time.
func NewID(prefix string) string {
	return prefix + "_" + ksuid.New().String()
}

// NewSnowflakeID generates a snowflake ID string using a node ID from the
// environment variable SNOWFLAKE_NODE, defaulting to node 1. It exists for
// callers that need numeric ordering guarantees instead of KSUIDs.
func NewSnowflakeID() string {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		return NewSnowflakeIDWithNode(1)
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return NewSnowflakeIDWithNode(1)
	}
	return NewSnowflakeIDWithNode(nodeID)
}

// NewSnowflakeIDWithNode generates a snowflake ID string using the provided
// node ID, falling back to an unprefixed KSUID if the node cannot be set up.
func NewSnowflakeIDWithNode(nodeID int64) string {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return ksuid.New().String()
	}
	return node.Generate().String()
}
