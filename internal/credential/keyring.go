// Package credential stores the Jira API token in the system keyring.
// Base URL and email are configuration, not secrets; only the token
// lives here.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "jirabridge"

// TokenKey is the keyring entry under which the API token is stored.
const TokenKey = "api_token"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/jirabridge/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("jirabridge-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// GetToken retrieves the stored API token.
func GetToken() (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(TokenKey)
	if err != nil {
		return "", fmt.Errorf("getting API token: %w", err)
	}

	return string(item.Data), nil
}

// SetToken stores the API token in the system keyring.
func SetToken(token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  TokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("storing API token: %w", err)
	}

	return nil
}

// DeleteToken removes the API token from the system keyring.
func DeleteToken() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(TokenKey); err != nil {
		return fmt.Errorf("deleting API token: %w", err)
	}

	return nil
}
