package repository

import "errors"

// ErrConcurrentUpdate is returned when a learner row changed between load and save
var ErrConcurrentUpdate = errors.New("learner was updated concurrently")
