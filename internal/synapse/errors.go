package synapse

import "errors"

var errEmptyContent = errors.New("peer returned empty content")
