package db

import "errors"

// ErrUnsupportedDialect is returned for connection strings no driver accepts.
var ErrUnsupportedDialect = errors.New("unsupported database dialect")
