package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidStatus       = goerr.New("invalid investigation status")
	ErrInvalidTransition   = goerr.New("investigation status transition not allowed")
	ErrNumberExhausted     = goerr.New("could not allocate a unique report number")
	ErrInvalidExportFilter = goerr.New("invalid export filter")
)

// Context keys for error values
const (
	StatusKey     = "status"
	FromStatusKey = "from_status"
)
