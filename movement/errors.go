package movement

import "errors"

var (
	ErrMissingBody         = errors.New("movement: body controller is nil")
	ErrMissingCamera       = errors.New("movement: camera is nil")
	ErrMissingGroundAnchor = errors.New("movement: ground check anchor is nil")
	ErrMissingPhysics      = errors.New("movement: physics query is nil")
	ErrMissingPointer      = errors.New("movement: pointer is nil")
	ErrMissingInput        = errors.New("movement: action source is nil")
	ErrAlreadyInitialized  = errors.New("movement: controller already initialized")
)
