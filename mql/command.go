package mql

import (
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
	"go.mongodb.org/mongo-driver/bson"
)

// Operation identifies the MongoDB operation a command performs
type Operation string

const (
	OpFind      Operation = "find"
	OpAggregate Operation = "aggregate"
)

// Command is a single MongoDB operation produced by query translation.
// Documents use bson.D throughout so rendering is deterministic.
type Command struct {
	Operation  Operation
	Collection string
	Filter     bson.D   // find only
	Projection bson.D   // find only, optional
	Pipeline   []bson.D // aggregate only
}

// Render produces the canonical textual MQL for the command, shell style,
// one pipeline stage per line. This text is what baselines store and what
// the capture logger records; it must be deterministic for equal commands.
func (c *Command) Render() (string, error) {
	if c.Collection == "" {
		return "", fmt.Errorf("command has no collection")
	}

	switch c.Operation {
	case OpFind:
		filter := c.Filter
		if filter == nil {
			filter = bson.D{}
		}
		filterJSON, err := renderDocument(filter)
		if err != nil {
			return "", err
		}
		if c.Projection != nil {
			projJSON, err := renderDocument(c.Projection)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("db.%s.find(%s, %s)", c.Collection, filterJSON, projJSON), nil
		}
		return fmt.Sprintf("db.%s.find(%s)", c.Collection, filterJSON), nil

	case OpAggregate:
		if len(c.Pipeline) == 0 {
			return fmt.Sprintf("db.%s.aggregate([])", c.Collection), nil
		}
		lines := make([]string, len(c.Pipeline))
		for i, stage := range c.Pipeline {
			stageJSON, err := renderDocument(stage)
			if err != nil {
				return "", fmt.Errorf("failed to render pipeline stage %d: %w", i, err)
			}
			lines[i] = "    " + stageJSON
		}
		return fmt.Sprintf("db.%s.aggregate([\n%s\n])", c.Collection, strings.Join(lines, ",\n")), nil

	default:
		return "", fmt.Errorf("unsupported command operation: %s", c.Operation)
	}
}

// MustRender renders the command and panics on failure. Intended for tests
// and for commands already validated by a provider.
func (c *Command) MustRender() string {
	s, err := c.Render()
	if err != nil {
		panic(err)
	}
	return s
}

// renderDocument marshals a document to compact relaxed extended JSON
func renderDocument(doc any) (string, error) {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	return string(pretty.Ugly(data)), nil
}
