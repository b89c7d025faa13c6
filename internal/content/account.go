// internal/content/account.go
package content

import (
	"fmt"
	"strings"
)

// Account is a timeline to discover posts from.
type Account struct {
	Handle string
	// URL is the canonical timeline address, https://x.com/<handle>.
	URL string
}

func (a Account) String() string { return a.URL }

// ParseAccount accepts a timeline URL, "@handle" or a bare handle.
func ParseAccount(raw string) (Account, error) {
	raw = strings.TrimSpace(raw)
	var handle string

	if strings.Contains(raw, "/") {
		u, err := normalize(raw)
		if err != nil {
			return Account{}, fmt.Errorf("invalid account %q: %w", raw, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		handle = segments[0]
	} else {
		handle = strings.TrimPrefix(raw, "@")
	}

	handle = strings.ToLower(handle)
	if !validHandle(handle) {
		return Account{}, fmt.Errorf("invalid account %q: handle must be letters, digits or underscore", raw)
	}
	return Account{Handle: handle, URL: fmt.Sprintf("https://%s/%s", CanonicalHost, handle)}, nil
}

// ParseAccounts parses every entry, failing on the first invalid one.
func ParseAccounts(raws []string) ([]Account, error) {
	accounts := make([]Account, 0, len(raws))
	for _, raw := range raws {
		a, err := ParseAccount(raw)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}
