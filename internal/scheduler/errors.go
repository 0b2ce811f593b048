package scheduler

import "errors"

var ErrAlreadySyncing = errors.New("perlego sync already in progress")
