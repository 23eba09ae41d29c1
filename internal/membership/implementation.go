// internal/membership/implementation.go
package membership

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"librekeep/internal/audit"
	"librekeep/internal/identity"
	"librekeep/internal/models"
	"librekeep/internal/store"
)

// service implements the Service interface.
type service struct {
	store   *store.Store
	tokens  *identity.TokenIssuer
	audits  *audit.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// NewService creates a new membership service instance. Registration and
// login share one rate limiter since both are unauthenticated entry points.
func NewService(st *store.Store, tokens *identity.TokenIssuer, audits *audit.Logger) Service {
	return &service{
		store:   st,
		tokens:  tokens,
		audits:  audits,
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
		tracer:  otel.Tracer("librekeep/membership"),
	}
}

func (s *service) session(member *models.Member) (*Session, error) {
	token, err := s.tokens.Issue(member.ID.Hex(), member.Username, models.RoleMember, member.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{Token: token, Member: member}, nil
}

// Register creates a member and its borrower mirror and logs it in.
func (s *service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Register", trace.WithAttributes(
		attribute.String("member.username", params.Username),
	))
	defer span.End()

	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	if params.Username == "" || params.Password == "" || params.Name == "" || params.Email == "" {
		return nil, fmt.Errorf("%w: username, password, name, and email are required", ErrValidation)
	}

	existing, err := s.store.Members.FindByUsernameOrEmail(ctx, params.Username, params.Email)
	if err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}
	if existing != nil {
		if existing.Username == params.Username {
			return nil, fmt.Errorf("%w: username already exists", ErrValidation)
		}
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}

	if _, err := s.store.Borrowers.FindByEmail(ctx, params.Email); err == nil {
		return nil, fmt.Errorf("%w: this email is already registered as a borrower", ErrValidation)
	} else if err != store.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing borrower: %w", err)
	}

	hash, salt, err := identity.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		Username:         params.Username,
		PasswordHash:     hash,
		PasswordSalt:     salt,
		Name:             params.Name,
		Email:            params.Email,
		Phone:            params.Phone,
		Address:          params.Address,
		Role:             models.RoleMember,
		IsActive:         true,
		MembershipDate:   time.Now(),
		BorrowedBooks:    []models.LoanRecord{},
		BorrowingHistory: []models.HistoryRecord{},
	}
	memberID, err := s.store.Members.Insert(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	member.ID = memberID

	// Mirror the member into the borrowers list so staff can lend to them at
	// the desk as well.
	borrower := &models.Borrower{
		BorrowerName:    params.Name,
		BorrowerEmail:   params.Email,
		BorrowerPhone:   params.Phone,
		BorrowerAddress: params.Address,
		Books:           []primitive.ObjectID{},
	}
	borrowerID, err := s.store.Borrowers.Insert(ctx, borrower)
	if err != nil {
		return nil, fmt.Errorf("failed to create borrower record: %w", err)
	}

	member.BorrowerID = &borrowerID
	if err := s.store.Members.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to link borrower record: %w", err)
	}

	s.audits.Log(ctx, models.MemberEntity, audit.ActionCreate, map[string]any{
		"memberId": member.ID.Hex(),
		"username": member.Username,
	})

	return s.session(member)
}

// Login authenticates an active member.
func (s *service) Login(ctx context.Context, username, password string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Login", trace.WithAttributes(
		attribute.String("member.username", username),
	))
	defer span.End()

	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	member, err := s.store.Members.FindByUsername(ctx, username)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if !member.IsActive {
		return nil, ErrInvalidCredentials
	}

	ok, err := identity.VerifyPassword(password, member.PasswordSalt, member.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.session(member)
}

// Profile returns the member's own account.
func (s *service) Profile(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error) {
	member, err := s.store.Members.FindByID(ctx, memberID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	return member, nil
}

func applyMemberPatch(member *models.Member, name, email, phone, address *string) {
	if name != nil {
		member.Name = *name
	}
	if email != nil {
		member.Email = *email
	}
	if phone != nil {
		member.Phone = *phone
	}
	if address != nil {
		member.Address = *address
	}
}

// UpdateProfile patches the member's own contact details.
func (s *service) UpdateProfile(ctx context.Context, memberID primitive.ObjectID, params UpdateProfileParams) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "membership.UpdateProfile", trace.WithAttributes(
		attribute.String("member.id", memberID.Hex()),
	))
	defer span.End()

	member, err := s.Profile(ctx, memberID)
	if err != nil {
		return nil, err
	}

	applyMemberPatch(member, params.Name, params.Email, params.Phone, params.Address)
	if err := s.store.Members.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.audits.Log(ctx, models.MemberEntity, audit.ActionUpdate, map[string]any{
		"memberId": member.ID.Hex(),
	})
	return member, nil
}

// ChangePassword verifies the current password and sets a new one.
func (s *service) ChangePassword(ctx context.Context, memberID primitive.ObjectID, current, next string) error {
	ctx, span := s.tracer.Start(ctx, "membership.ChangePassword", trace.WithAttributes(
		attribute.String("member.id", memberID.Hex()),
	))
	defer span.End()

	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}

	member, err := s.Profile(ctx, memberID)
	if err != nil {
		return err
	}

	ok, err := identity.VerifyPassword(current, member.PasswordSalt, member.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, salt, err := identity.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	member.PasswordHash = hash
	member.PasswordSalt = salt

	if err := s.store.Members.Update(ctx, member); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

// ListMembers returns every portal account, newest membership first.
func (s *service) ListMembers(ctx context.Context) ([]models.Member, error) {
	members, err := s.store.Members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// GetMember returns one portal account.
func (s *service) GetMember(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	return s.Profile(ctx, id)
}

// UpdateMember is the staff-side patch, including the active flag.
func (s *service) UpdateMember(ctx context.Context, id primitive.ObjectID, params UpdateMemberParams) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "membership.UpdateMember", trace.WithAttributes(
		attribute.String("member.id", id.Hex()),
	))
	defer span.End()

	member, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	applyMemberPatch(member, params.Name, params.Email, params.Phone, params.Address)
	if params.IsActive != nil {
		member.IsActive = *params.IsActive
	}
	if err := s.store.Members.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.audits.Log(ctx, models.MemberEntity, audit.ActionUpdate, map[string]any{
		"memberId": member.ID.Hex(),
		"isActive": member.IsActive,
	})
	return member, nil
}

// DeleteMember removes the account unless open loans remain.
func (s *service) DeleteMember(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "membership.DeleteMember", trace.WithAttributes(
		attribute.String("member.id", id.Hex()),
	))
	defer span.End()

	member, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	if len(member.CurrentLoans()) > 0 {
		return ErrOpenLoans
	}

	if err := s.store.Members.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.audits.Log(ctx, models.MemberEntity, audit.ActionDelete, map[string]any{
		"memberId": id.Hex(),
	})
	return nil
}
