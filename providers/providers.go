// Package providers defines the contract between the conformance suite and
// the query translation provider under test.
package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mqlconform/mqlconform/mql"
	"github.com/mqlconform/mqlconform/query"
)

// ErrUnsupported marks queries a provider cannot translate to MQL.
// The wrapped message is the documented limitation the suite asserts.
var ErrUnsupported = errors.New("unsupported by MQL translation")

// Unsupportedf wraps ErrUnsupported with a limitation message
func Unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// IsUnsupported reports whether err marks an unsupported query shape
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// Provider translates structured queries into MongoDB commands and runs them.
// Translate must be pure: no server connection is needed to obtain the MQL
// a query compiles to.
type Provider interface {
	Name() string
	Translate(q *query.Query) (*mql.Command, error)
	Execute(ctx context.Context, cmd *mql.Command, dest any) error
}
