// Package secrets resolves the database password from configuration, the environment or
// the operating system keyring.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when a source holds no password.
var ErrNotFound = errors.New("password not found")

// Source yields the password used to connect.
type Source interface {
	Password(ctx context.Context) (string, error)
}

// Static is a password taken verbatim from configuration.
type Static string

func (s Static) Password(context.Context) (string, error) {
	return string(s), nil
}

// Env reads the password from an environment variable.
type Env string

func (e Env) Password(context.Context) (string, error) {
	v, ok := os.LookupEnv(string(e))
	if !ok {
		return "", fmt.Errorf("environment variable %s: %w", string(e), ErrNotFound)
	}
	return v, nil
}

// Keyring looks the password up in the OS keyring under Service, keyed by Account.
type Keyring struct {
	Service string
	Account string
}

func (k Keyring) Password(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pw, err := keyring.Get(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("keyring entry %s/%s: %w", k.Service, k.Account, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyring entry %s/%s: %w", k.Service, k.Account, err)
	}
	return pw, nil
}

// Resolve picks the source for the given settings, in order of preference: a keyring
// service, an environment variable, then the literal password, which may be empty.
func Resolve(password, envVar, service, account string) Source {
	switch {
	case service != "":
		return Keyring{Service: service, Account: account}
	case envVar != "":
		return Env(envVar)
	default:
		return Static(password)
	}
}
