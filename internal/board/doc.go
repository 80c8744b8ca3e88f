// Package board is the activity board client: it loads the catalog from the
// activities API, renders it into a View, submits signups and participant
// removals, and reports outcomes as transient status messages.
//
// Every action follows the same shape. The request is issued, its result is
// either a value or an *errors.AppError, and exactly one of the success or
// failure render paths runs. Nothing is updated optimistically; a successful
// mutation is followed by a full catalog refresh.
package board
