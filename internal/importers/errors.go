package importers

import "errors"

// ErrRunInProgress is returned when an import is started while another one is running
var ErrRunInProgress = errors.New("a Perlego import is already running")
