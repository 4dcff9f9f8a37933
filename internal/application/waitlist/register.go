package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
)

// Field limits for a submission
const (
	MaxNameLength            = 120
	MaxCompanyOrHandleLength = 120
	MaxMessageLength         = 1000
)

// RegisterUseCase creates a waitlist entry for the authenticated caller.
// An entry is never overwritten: a second attempt by the same user or with
// the same email fails.
type RegisterUseCase struct {
	repo Repository
	opts options
}

// NewRegisterUseCase creates a new RegisterUseCase
func NewRegisterUseCase(repo Repository, opts ...Option) *RegisterUseCase {
	return &RegisterUseCase{repo: repo, opts: buildOptions(opts)}
}

// Execute performs the registration
func (uc *RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (Result, error) {
	result, outcome, err := uc.execute(ctx, cmd)
	uc.opts.metrics.RegistrationCompleted(outcome)
	return result, err
}

func (uc *RegisterUseCase) execute(ctx context.Context, cmd RegisterCommand) (Result, string, error) {
	// Authentication is checked before anything touches the store
	if cmd.Identity.IsZero() {
		return Result{}, OutcomeUnauthenticated, ErrUnauthenticated
	}

	sub := normalize(cmd.Submission)
	if err := uc.validate(sub); err != nil {
		return Result{}, OutcomeInvalid, err
	}

	userID := cmd.Identity.UserID
	logger := uc.opts.logger.With("user_id", userID)

	// Fast-path duplicate checks. The store's unique indexes remain the
	// authority; Create below reports the same errors under a race.
	if _, err := uc.repo.FindByEmail(ctx, sub.Email); err == nil {
		return Result{}, OutcomeDuplicateEmail, ErrDuplicateEmail
	} else if !errors.Is(err, errs.ErrNotFound) {
		logger.ErrorContext(ctx, "failed to look up entry by email", "error", err)
		return Result{}, OutcomeStoreFailure, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	if _, err := uc.repo.FindByUserID(ctx, userID); err == nil {
		return Result{}, OutcomeDuplicateUser, ErrDuplicateUser
	} else if !errors.Is(err, errs.ErrNotFound) {
		logger.ErrorContext(ctx, "failed to look up entry by user", "error", err)
		return Result{}, OutcomeStoreFailure, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	candidate, err := waitlist.NewEntry(userID, waitlist.Details{
		Email:           sub.Email,
		Name:            sub.Name,
		UserType:        waitlist.UserType(sub.UserType),
		CompanyOrHandle: sub.CompanyOrHandle,
		Message:         sub.Message,
	})
	if err != nil {
		return Result{}, OutcomeInvalid, fmt.Errorf("failed to create entry: %w", err)
	}

	created, err := uc.repo.Create(ctx, candidate)
	if err != nil {
		if dupErr := uc.translateConflict(ctx, err, userID); dupErr != nil {
			outcome := OutcomeDuplicateEmail
			if errors.Is(dupErr, ErrDuplicateUser) {
				outcome = OutcomeDuplicateUser
			}
			return Result{}, outcome, dupErr
		}
		logger.ErrorContext(ctx, "failed to create waitlist entry", "error", err)
		return Result{}, OutcomeStoreFailure, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	logger.InfoContext(ctx, "waitlist entry created",
		"entry_id", created.ID().String(),
		"user_type", string(created.UserType()),
	)

	return Result{
		Result: appcore.Result[*waitlist.Entry]{
			Value: created,
		},
	}, OutcomeCreated, nil
}

// translateConflict maps a store uniqueness violation to the same error the
// pre-checks return. It returns nil for any other failure.
func (uc *RegisterUseCase) translateConflict(ctx context.Context, err error, userID string) error {
	if !errors.Is(err, errs.ErrAlreadyExists) {
		return nil
	}

	var uv *errs.UniqueViolationError
	if errors.As(err, &uv) {
		switch uv.Field {
		case FieldEmail:
			return ErrDuplicateEmail
		case FieldUserID:
			return ErrDuplicateUser
		}
	}

	// Field unknown: the winner of the race is visible now
	if _, findErr := uc.repo.FindByUserID(ctx, userID); findErr == nil {
		return ErrDuplicateUser
	}
	return ErrDuplicateEmail
}

func (uc *RegisterUseCase) validate(sub Submission) error {
	return appcore.CollectValidation(
		appcore.ValidateRequired("name", sub.Name),
		appcore.ValidateMaxLength("name", sub.Name, MaxNameLength),
		appcore.ValidateEmail("email", sub.Email),
		appcore.ValidateEnum("userType", sub.UserType, waitlist.UserTypes()),
		appcore.ValidateOptionalMaxLength("companyOrHandle", sub.CompanyOrHandle, MaxCompanyOrHandleLength),
		appcore.ValidateOptionalMaxLength("message", sub.Message, MaxMessageLength),
	)
}

// normalize trims the name and canonicalizes the email. Optional fields are
// kept verbatim so that "absent" and "empty" stay distinct.
func normalize(sub Submission) Submission {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	return sub
}
