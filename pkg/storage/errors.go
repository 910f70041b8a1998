package storage

import "domainvar/pkg/serrors"

// Transaction misuse errors. They carry serrors.ErrConflict so outer layers
// can map them without importing this package.
var (
	// ErrAlreadyInTx is returned by Begin and Migrate on a transactional handle.
	ErrAlreadyInTx = serrors.With(serrors.ErrConflict, "already in tx")
	// ErrNotInTx is returned by Commit and Rollback outside a transaction.
	ErrNotInTx = serrors.With(serrors.ErrConflict, "not in tx")
)
