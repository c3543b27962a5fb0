// Package feed pulls the external registration feed: an ordered sequence of
// rows, each an ordered sequence of string cells, with the first row holding
// the column headers.
package feed

import (
	"context"
)

// Source fetches the full row set of the external feed. A fetch covers the
// whole sheet; there is no incremental cursor. Implementations wrap
// transport failures in shared.ErrSourceUnavailable so the caller can tell
// a dead source from an empty one.
type Source interface {
	FetchRows(ctx context.Context) ([][]string, error)
}
