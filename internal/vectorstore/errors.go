package vectorstore

import "errors"

// ErrUnavailable is returned by every store operation when the backing
// database cannot be reached. Operations fail closed rather than silently
// returning empty results, so callers can distinguish "no results" from
// "index down".
var ErrUnavailable = errors.New("vector store not available")
