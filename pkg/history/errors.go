package history

import "errors"

var errNoEntry = errors.New("no current history entry")
