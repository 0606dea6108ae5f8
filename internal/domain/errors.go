package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientAvailable  = errors.New("cantidad disponible insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrAlreadyCancelled       = errors.New("el movimiento ya fue cancelado")
	ErrRecordBlocked          = errors.New("registro de stock bloqueado")
)
