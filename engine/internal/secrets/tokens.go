// Package secrets resolves per-source ATS API tokens from the OS keychain.
// Adapted from the teacher's candidate-side IMAP password helper: same
// keyring.Service/Account shape, repointed at ATS bearer tokens instead of
// an email account password.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"jobingest/internal/domain"
)

const KeyringService = "jobingest"

// SourceTokenAccount builds the keyring account name for a source's API
// token: "jobingest:<kind>:<sourceId>".
func SourceTokenAccount(kind domain.SourceKind, sourceID int64) string {
	return fmt.Sprintf("%s:%s:%d", KeyringService, kind, sourceID)
}

// GetSourceToken resolves a bearer token for a source from the keychain.
// Absence is not an error condition callers must branch on separately:
// most boards are public and need no auth at all.
func GetSourceToken(account string) (string, bool) {
	if strings.TrimSpace(account) == "" {
		return "", false
	}
	tok, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", false
	}
	return tok, true
}

func SetSourceToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, token)
}

func DeleteSourceToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
