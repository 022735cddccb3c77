package credentials

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates no cookie record exists for the requested account.
var ErrNotFound = errors.New("cookie file not found for account")

// Store provides read-only access to pre-captured account cookie files.
// The canonical copy is never created or mutated here; Stage copies it into a
// request-owned working location and the caller deletes that copy after use.
type Store interface {
	// Exists reports whether a cookie record exists for the account.
	Exists(ctx context.Context, accountName string) (bool, error)

	// Stage copies the account's cookie record to destPath.
	// Returns ErrNotFound when the account has no record.
	Stage(ctx context.Context, accountName string, destPath string) error
}

// FileName builds the conventional cookie file name for an account,
// e.g. TK_cookies_alice.json.
func FileName(prefix, accountName, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, accountName, ext)
}
