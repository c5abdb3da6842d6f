package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Taxonomía de errores del saga de aprovisionamiento.
var (
	// ErrMissingReference: un campo requerido no pudo resolverse por ninguna
	// fuente. Recuperable: se vuelve deficiencia, nunca aborta el saga.
	ErrMissingReference = errors.New("referencia faltante")

	// ErrDuplicateConflict: un insert violaría unicidad. Se recupera tratando
	// la fila existente como autoritativa.
	ErrDuplicateConflict = errors.New("conflicto de duplicado")

	// ErrTransientStore: fallo de I/O contra el almacén. Se propaga al caller
	// como reintentable.
	ErrTransientStore = errors.New("error transitorio de almacenamiento")

	// ErrAmbiguousElevationTarget: más de un principal candidato para la
	// elevación. Se registra como deficiencia, nunca se adivina.
	ErrAmbiguousElevationTarget = errors.New("candidato de elevación ambiguo")
)
