package world

import (
	"errors"

	coreerrors "shellchain/core/errors"
)

var (
	errNilState    = errors.New("world engine: state not configured")
	errNilRegistry = errors.New("world engine: token registry not configured")
	errNilLedger   = errors.New("world engine: ledger not configured")
	errNilSigner   = errors.New("world engine: signer not configured")
)

// Phase gating.
var (
	ErrSpiritClaimNotAvailable               = coreerrors.New(coreerrors.ErrPhaseClosed, "world: spirit claim not available")
	ErrRareOriginOfShellPurchaseNotAvailable = coreerrors.New(coreerrors.ErrPhaseClosed, "world: rare origin of shell purchase not available")
	ErrHeroOriginOfShellPurchaseNotAvailable = coreerrors.New(coreerrors.ErrPhaseClosed, "world: hero origin of shell purchase not available")
	ErrPreorderOriginOfShellNotAvailable     = coreerrors.New(coreerrors.ErrPhaseClosed, "world: preorder origin of shell not available")
	ErrPreorderClaimNotAvailable             = coreerrors.New(coreerrors.ErrPhaseClosed, "world: preorder claims open once preorders close")
)

// Eligibility.
var (
	ErrSpiritAlreadyClaimed          = coreerrors.New(coreerrors.ErrIneligible, "world: spirit already claimed")
	ErrMustOwnSpiritToPurchase       = coreerrors.New(coreerrors.ErrIneligible, "world: must own spirit to purchase")
	ErrOriginOfShellAlreadyPurchased = coreerrors.New(coreerrors.ErrIneligible, "world: origin of shell already purchased")
	ErrBelowMinimumBalanceThreshold  = coreerrors.New(coreerrors.ErrIneligible, "world: below minimum balance threshold")
	ErrWhitelistVerificationFailed   = coreerrors.New(coreerrors.ErrIneligible, "world: whitelist verification failed")
	ErrInvalidPurchase               = coreerrors.New(coreerrors.ErrIneligible, "world: invalid purchase")
	ErrPreorderClaimNotDetected      = coreerrors.New(coreerrors.ErrIneligible, "world: no chosen preorder to claim")
	ErrRefundClaimNotDetected        = coreerrors.New(coreerrors.ErrIneligible, "world: no refund to claim")
	ErrPreorderIsPending             = coreerrors.New(coreerrors.ErrIneligible, "world: preorder is pending")
	ErrNotPreorderOwner              = coreerrors.New(coreerrors.ErrIneligible, "world: not preorder owner")
	ErrMetadataTooLong               = coreerrors.New(coreerrors.ErrIneligible, "world: metadata too long")
	ErrInvalidRace                   = coreerrors.New(coreerrors.ErrIneligible, "world: invalid race")
	ErrInvalidCareer                 = coreerrors.New(coreerrors.ErrIneligible, "world: invalid career")
)

// Scarcity.
var (
	ErrRaceMintMaxReached    = coreerrors.New(coreerrors.ErrScarcity, "world: race mint max reached")
	ErrNoAvailablePreorderId = coreerrors.New(coreerrors.ErrScarcity, "world: no available preorder id")
)

// Configuration.
var (
	ErrOverlordNotSet                      = coreerrors.New(coreerrors.ErrConfiguration, "world: overlord not set")
	ErrWorldClockAlreadySet                = coreerrors.New(coreerrors.ErrConfiguration, "world: world clock already set")
	ErrSpiritCollectionNotSet              = coreerrors.New(coreerrors.ErrConfiguration, "world: spirit collection not set")
	ErrSpiritCollectionIdAlreadySet        = coreerrors.New(coreerrors.ErrConfiguration, "world: spirit collection id already set")
	ErrOriginOfShellCollectionNotSet       = coreerrors.New(coreerrors.ErrConfiguration, "world: origin of shell collection not set")
	ErrOriginOfShellCollectionIdAlreadySet = coreerrors.New(coreerrors.ErrConfiguration, "world: origin of shell collection id already set")
	ErrInvalidStatusType                   = coreerrors.New(coreerrors.ErrConfiguration, "world: invalid status type")
	ErrWrongOriginOfShellType              = coreerrors.New(coreerrors.ErrConfiguration, "world: wrong origin of shell type")
	ErrGenesisAlreadyApplied               = coreerrors.New(coreerrors.ErrConfiguration, "world: genesis already applied")
)

// Integrity.
var (
	ErrOriginOfShellInventoryCorrupted = coreerrors.New(coreerrors.ErrIntegrity, "world: origin of shell inventory corrupted")
	ErrUnableToAddAttributes           = coreerrors.New(coreerrors.ErrIntegrity, "world: unable to add attributes")
	ErrKeyTooLong                      = coreerrors.New(coreerrors.ErrIntegrity, "world: key too long")
)

// Authorization.
var (
	ErrRequireOverlordAccount = coreerrors.New(coreerrors.ErrUnauthorized, "world: require overlord account")
)
