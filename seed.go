package authgate

import (
	"context"
	"os"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// UserRegistrar creates users with a cleartext password
type UserRegistrar interface {
	Register(ctx context.Context, attrs UserAttributes, password string) (*User, error)
}

var (
	_ UserRegistrar = (*MemoryStore)(nil)
	_ UserRegistrar = (*UsersRepository)(nil)
)

// SeedUser is one entry of a seed file
type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Password string `yaml:"password"`
	Disabled bool   `yaml:"disabled"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedUsers reads a YAML file with a top level users list
func LoadSeedUsers(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to read seed file")
	}
	return ParseSeedUsers(data)
}

// ParseSeedUsers decodes seed users from YAML
func ParseSeedUsers(data []byte) ([]SeedUser, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse seed users")
	}
	return f.Users, nil
}

// SeedUsers registers every seed user, skipping usernames that already exist
func SeedUsers(ctx context.Context, registrar UserRegistrar, users []SeedUser) (int, error) {
	created := 0
	for _, su := range users {
		_, err := registrar.Register(ctx, UserAttributes{
			Username: su.Username,
			Email:    su.Email,
			FullName: su.FullName,
			Disabled: su.Disabled,
		}, su.Password)
		if err != nil {
			if errors.IsCategory(err, errors.CategoryConflict) {
				continue
			}
			return created, errors.Wrap(err, errors.CategoryBadInput, "failed to seed user "+su.Username)
		}
		created++
	}
	return created, nil
}
