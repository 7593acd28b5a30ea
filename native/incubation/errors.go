package incubation

import (
	"errors"

	coreerrors "shellchain/core/errors"
)

var (
	errNilState    = errors.New("incubation engine: state not configured")
	errNilWorld    = errors.New("incubation engine: world view not configured")
	errNilRegistry = errors.New("incubation engine: token registry not configured")
)

var (
	ErrStartIncubationNotAvailable = coreerrors.New(coreerrors.ErrPhaseClosed, "incubation: start incubation not available")

	ErrHatchingInProgress            = coreerrors.New(coreerrors.ErrIneligible, "incubation: hatching in progress")
	ErrCannotHatchOriginOfShell      = coreerrors.New(coreerrors.ErrIneligible, "incubation: cannot hatch origin of shell")
	ErrCannotSendFoodToOriginOfShell = coreerrors.New(coreerrors.ErrIneligible, "incubation: cannot send food to origin of shell")
	ErrMaxFoodFedLimitReached        = coreerrors.New(coreerrors.ErrIneligible, "incubation: max food fed limit reached")
	ErrAlreadySentFoodTwice          = coreerrors.New(coreerrors.ErrIneligible, "incubation: already sent food twice")
	ErrNoFoodAvailable               = coreerrors.New(coreerrors.ErrIneligible, "incubation: no food available")
	ErrNotOwner                      = coreerrors.New(coreerrors.ErrIneligible, "incubation: not owner")
	ErrWrongCollectionId             = coreerrors.New(coreerrors.ErrIneligible, "incubation: wrong collection id")

	ErrShellCollectionIdAlreadySet = coreerrors.New(coreerrors.ErrConfiguration, "incubation: shell collection id already set")
	ErrShellCollectionIdNotSet     = coreerrors.New(coreerrors.ErrConfiguration, "incubation: shell collection id not set")

	ErrNoHatchTimeDetected          = coreerrors.New(coreerrors.ErrIntegrity, "incubation: no hatch time detected")
	ErrRaceNotDetected              = coreerrors.New(coreerrors.ErrIntegrity, "incubation: race not detected")
	ErrCareerNotDetected            = coreerrors.New(coreerrors.ErrIntegrity, "incubation: career not detected")
	ErrOriginOfShellTypeNotDetected = coreerrors.New(coreerrors.ErrIntegrity, "incubation: origin of shell type not detected")
)
