package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	repo "github.com/oksasatya/go-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
	"github.com/oksasatya/go-task-manager/pkg/validation"
)

// UserUpdatableFields is the allow-list for profile updates.
var UserUpdatableFields = []string{"name", "email", "password", "age"}

// NewUserInput is a registration candidate.
type NewUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Age      *int   `json:"age" validate:"omitempty,gte=0"`
}

func (in *NewUserInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CredentialStore owns user records: schema rules, password hashing and the
// session token list. It never returns or stores a plaintext password.
type CredentialStore struct {
	Repo repo.UserRepository
	Cost int

	// compared against on unknown emails so both login failures cost a bcrypt round
	dummyHash string
}

func NewCredentialStore(r repo.UserRepository, bcryptCost int) (*CredentialStore, error) {
	dummy, err := helpers.HashPasswordCost("no-such-user-dummy", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &CredentialStore{Repo: r, Cost: bcryptCost, dummyHash: dummy}, nil
}

// Create validates the candidate, hashes its password and persists it.
func (s *CredentialStore) Create(ctx context.Context, in NewUserInput) (*entity.User, error) {
	u, _, err := s.create(ctx, in, nil)
	return u, err
}

// CreateWithToken is Create with a first session token already in the token
// list. issue receives the new user's id; the user and token are stored in a
// single write.
func (s *CredentialStore) CreateWithToken(ctx context.Context, in NewUserInput, issue func(userID string) (string, error)) (*entity.User, string, error) {
	return s.create(ctx, in, issue)
}

func (s *CredentialStore) create(ctx context.Context, in NewUserInput, issue func(string) (string, error)) (*entity.User, string, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}
	hash, err := helpers.HashPasswordCost(in.Password, s.Cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Tokens:   []string{},
	}
	if in.Age != nil {
		u.Age = *in.Age
	}
	var token string
	if issue != nil {
		if token, err = issue(u.ID); err != nil {
			return nil, "", fmt.Errorf("issue token: %w", err)
		}
		u.Tokens = []string{token}
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, "", translateStoreError(err)
	}
	return u, token, nil
}

// FindByCredentials returns the user for email if password matches its hash.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *CredentialStore) FindByCredentials(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		helpers.CompareHashAndPassword(s.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, strings.TrimSpace(password)) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *CredentialStore) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return u, nil
}

func (s *CredentialStore) AppendToken(ctx context.Context, userID, token string) error {
	if err := s.Repo.AppendToken(ctx, userID, token); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func (s *CredentialStore) RemoveToken(ctx context.Context, userID, token string) error {
	if err := s.Repo.RemoveToken(ctx, userID, token); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func (s *CredentialStore) ClearTokens(ctx context.Context, userID string) error {
	if err := s.Repo.ClearTokens(ctx, userID); err != nil {
		return translateStoreError(err)
	}
	return nil
}

// DeleteCascade deletes the user together with all of its tasks. On error
// nothing is considered deleted.
func (s *CredentialStore) DeleteCascade(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.DeleteCascade(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return u, nil
}

// Update applies an allow-listed profile patch. Any field outside
// UserUpdatableFields rejects the whole update.
func (s *CredentialStore) Update(ctx context.Context, userID string, fields map[string]json.RawMessage) (*entity.User, error) {
	if err := CheckAllowedFields(sortedKeys(fields), UserUpdatableFields...); err != nil {
		return nil, err
	}
	patch, err := s.decodeUserPatch(fields)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, userID)
	}
	u, err := s.Repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return u, nil
}

func (s *CredentialStore) decodeUserPatch(fields map[string]json.RawMessage) (entity.UserPatch, error) {
	var (
		patch entity.UserPatch
		verr  validation.Error
	)
	collect := func(err error) {
		var ve *validation.Error
		if errors.As(err, &ve) {
			verr.Violations = append(verr.Violations, ve.Violations...)
		}
	}

	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			collect(validation.NewError("name", "string", "must be a string"))
		} else {
			name = strings.TrimSpace(name)
			collect(validation.Var("name", name, "required"))
			patch.Name = &name
		}
	}
	if raw, ok := fields["email"]; ok {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			collect(validation.NewError("email", "string", "must be a string"))
		} else {
			email = normalizeEmail(email)
			collect(validation.Var("email", email, "required,email"))
			patch.Email = &email
		}
	}
	var plain string
	if raw, ok := fields["password"]; ok {
		if err := json.Unmarshal(raw, &plain); err != nil {
			collect(validation.NewError("password", "string", "must be a string"))
		} else {
			plain = strings.TrimSpace(plain)
			if err := validation.Var("password", plain, "required,pwd"); err != nil {
				var ve *validation.Error
				if errors.As(err, &ve) {
					for i := range ve.Violations {
						ve.Violations[i].Value = ""
					}
				}
				collect(err)
			} else {
				patch.Password = &plain
			}
		}
	}
	if raw, ok := fields["age"]; ok {
		// null would otherwise decode to 0
		var age *int
		if err := json.Unmarshal(raw, &age); err != nil || age == nil {
			collect(validation.NewError("age", "int", "must be an integer"))
		} else {
			collect(validation.Var("age", *age, "gte=0"))
			patch.Age = age
		}
	}

	if len(verr.Violations) > 0 {
		return entity.UserPatch{}, &verr
	}
	if patch.Password != nil {
		hash, err := helpers.HashPasswordCost(plain, s.Cost)
		if err != nil {
			return entity.UserPatch{}, fmt.Errorf("hash password: %w", err)
		}
		patch.Password = &hash
	}
	return patch, nil
}

// translateStoreError maps storage errors into the application taxonomy.
func translateStoreError(err error) error {
	var dup *repo.DuplicateError
	switch {
	case errors.As(err, &dup):
		return validation.NewError(dup.Field, "unique", "is already taken")
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
