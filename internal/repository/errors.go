// Package repository persists the booking platform's durable records in
// MySQL.  Sentinel errors shared by several repositories live here so
// handlers can translate them into HTTP status codes uniformly.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by another couple.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is the generic class for operations blocked by existing
// state, such as a second checkout on an already booked flow.  Handlers
// translate it into 409.
var ErrConflict = errors.New("conflict")
