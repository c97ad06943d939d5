package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors (raised at designer construction)
	ErrInvalidConfig        = errors.New("invalid designer configuration")
	ErrUnsupportedDesign    = fmt.Errorf("%w: unsupported design type", ErrInvalidConfig)
	ErrInvalidEdgeAction    = fmt.Errorf("%w: invalid edge action", ErrInvalidConfig)
	ErrInvalidKnob          = fmt.Errorf("%w: tuning parameter out of range", ErrInvalidConfig)
	ErrMissingFormula       = fmt.Errorf("%w: manual model selection requires a formula", ErrInvalidConfig)
	ErrCategoricalNoScreen  = fmt.Errorf("%w: categorical factors require a screening phase", ErrInvalidConfig)
	ErrInvalidFactorSpec    = fmt.Errorf("%w: invalid factor specification", ErrInvalidConfig)
	ErrInvalidResponseSpec  = fmt.Errorf("%w: invalid response specification", ErrInvalidConfig)
	ErrUnknownPhase         = fmt.Errorf("%w: unknown phase", ErrInvalidConfig)
	ErrUnknownModelSelector = fmt.Errorf("%w: unknown model selection", ErrInvalidConfig)

	// Factor assignment errors
	ErrNonIntegerOrdinal = errors.New("ordinal factor values must be integers")
	ErrInvalidRange      = errors.New("factor range violates its bounds")

	// Design errors
	ErrUnboundedFactor          = errors.New("screening requires finite factor bounds")
	ErrEdgeActionNotImplemented = errors.New("edge action not implemented")
	ErrReductionTooLarge        = errors.New("reduction too large compared to factor levels")
	ErrTooFewFactors            = errors.New("too few factors for design")

	// Response / sheet errors
	ErrShapeMismatch           = errors.New("sheet columns do not match configured names")
	ErrNonPositiveResponse     = errors.New("transform requires strictly positive responses")
	ErrNoScreeningResponse     = errors.New("no screening response to re-evaluate")
	ErrNoScreeningAlternatives = errors.New("no more screening alternatives")
	ErrWrongPhase              = errors.New("operation not valid in current phase")
	ErrNoDesign                = errors.New("no design has been generated")

	// Model errors
	ErrInvalidFormula   = errors.New("invalid model formula")
	ErrInsufficientData = errors.New("insufficient data for model fit")

	// Ledger errors
	ErrNotFound         = errors.New("resource not found")
	ErrCampaignNotFound = fmt.Errorf("%w: campaign", ErrNotFound)
)
