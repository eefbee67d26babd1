package credentials

import "github.com/zalando/go-keyring"

// SecretStore is the OS-provided secure storage facility.
type SecretStore interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
	Delete(service, user string) error
}

// Keyring talks to the platform keychain (Keychain, Secret Service,
// Windows Credential Manager) through go-keyring.
type Keyring struct{}

func (Keyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }

func (Keyring) Set(service, user, secret string) error { return keyring.Set(service, user, secret) }

func (Keyring) Delete(service, user string) error { return keyring.Delete(service, user) }
