package authgate

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TextCodeUserExists is set on the conflict error returned by Register
const TextCodeUserExists = "USER_EXISTS"

// userRecord is the persisted shape of a User plus its credential
type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	Username      string     `bun:"username,notnull,unique"`
	Email         string     `bun:"email,notnull"`
	FullName      string     `bun:"full_name"`
	PasswordHash  string     `bun:"password_hash,notnull"`
	Disabled      bool       `bun:"disabled,notnull"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

func (r *userRecord) toUser() *User {
	return &User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Disabled: r.Disabled,
	}
}

// UsersRepository is a UserStore backed by a bun database
type UsersRepository struct {
	repository.Repository[*userRecord]
	db     bun.IDB
	hasher PasswordAuthenticator
}

var _ UserStore = (*UsersRepository)(nil)

func NewUsersRepository(db bun.IDB) *UsersRepository {
	repo := repository.NewRepository[*userRecord](db, repository.ModelHandlers[*userRecord]{
		NewRecord: func() *userRecord { return &userRecord{} },
		GetID: func(r *userRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *userRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &UsersRepository{
		Repository: repo,
		db:         db,
		hasher:     BcryptHasher{},
	}
}

// WithPasswordAuthenticator sets the hasher used by Register
func (a *UsersRepository) WithPasswordAuthenticator(hasher PasswordAuthenticator) *UsersRepository {
	if hasher != nil {
		a.hasher = hasher
	}
	return a
}

// CreateSchema creates the users table if it does not exist
func (a *UsersRepository) CreateSchema(ctx context.Context) error {
	_, err := a.db.NewCreateTable().
		Model((*userRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// Register validates the attributes, hashes the password and inserts the user
func (a *UsersRepository) Register(ctx context.Context, attrs UserAttributes, password string) (*User, error) {
	user, err := attrs.Build()
	if err != nil {
		return nil, err
	}

	if _, err := a.find(ctx, user.Username); err == nil {
		return nil, errors.New("username already registered", errors.CategoryConflict).
			WithTextCode(TextCodeUserExists).
			WithCode(errors.CodeConflict)
	} else if !IsNotFound(err) {
		return nil, err
	}

	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	record, err := a.Create(ctx, &userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: hash,
		Disabled:     user.Disabled,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert user")
	}

	return record.toUser(), nil
}

// SetDisabled flips the disabled flag, the only mutable user attribute
func (a *UsersRepository) SetDisabled(ctx context.Context, username string, disabled bool) error {
	record, err := a.find(ctx, username)
	if err != nil {
		return err
	}

	// explicit Set keeps a false flag from being dropped by OmitZero
	_, err = a.Update(ctx, record, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("disabled = ?", disabled).Set("updated_at = ?", time.Now())
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrRecordNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	return nil
}

func (a *UsersRepository) LookupCredential(ctx context.Context, username string) (*StoredCredential, error) {
	record, err := a.find(ctx, username)
	if err != nil {
		return nil, err
	}

	return &StoredCredential{
		Username:       record.Username,
		HashedPassword: record.PasswordHash,
	}, nil
}

func (a *UsersRepository) LookupUser(ctx context.Context, username string) (*User, error) {
	record, err := a.find(ctx, username)
	if err != nil {
		return nil, err
	}
	return record.toUser(), nil
}

// find matches on the username column only. GetByIdentifier would switch
// to the id column for usernames that parse as a uuid.
func (a *UsersRepository) find(ctx context.Context, username string) (*userRecord, error) {
	record, err := a.Get(ctx, repository.SelectBy("username", "=", username))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to query user")
	}
	return record, nil
}
