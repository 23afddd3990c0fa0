package session

import (
	"time"

	"github.com/abelbrown/popcorn/internal/catalog"
)

// SearchSettled is sent when a catalog search returns, whether or not its
// token is still live.
type SearchSettled struct {
	Token   *Token
	Query   string
	Results []catalog.Show
	Err     error
	Dur     time.Duration
}

// DetailSettled is sent when a catalog lookup returns.
type DetailSettled struct {
	Token  *Token
	IMDbID string
	Detail catalog.Detail
	Err    error
	Dur    time.Duration
}
