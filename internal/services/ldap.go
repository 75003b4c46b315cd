package services

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/Nina932/nyx/internal/config"
	"github.com/go-ldap/ldap/v3"
)

var (
	ErrLDAPDisabled           = errors.New("ldap is not enabled")
	ErrLDAPInvalidCredentials = errors.New("ldap: invalid credentials")
)

type LDAPUser struct {
	DN    string
	Email string
	Name  string
}

// Directory authenticates users against a directory server.
type Directory interface {
	Authenticate(login, password string) (*LDAPUser, error)
}

type LDAPService struct {
	config *config.LDAPConfig
}

func NewLDAPService(cfg *config.LDAPConfig) *LDAPService {
	return &LDAPService{config: cfg}
}

func (s *LDAPService) IsEnabled() bool {
	return s.config != nil && s.config.Enabled
}

// Authenticate looks the login up with the service account, then binds as
// the found entry to check the password. Unknown logins and wrong passwords
// both yield ErrLDAPInvalidCredentials.
func (s *LDAPService) Authenticate(login, password string) (*LDAPUser, error) {
	if !s.IsEnabled() {
		return nil, ErrLDAPDisabled
	}
	if password == "" {
		// an empty password would be an unauthenticated bind
		return nil, ErrLDAPInvalidCredentials
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var (
		conn *ldap.Conn
		err  error
	)
	if s.config.UseSSL {
		conn, err = ldap.DialURL("ldaps://"+addr, ldap.DialWithTLSConfig(&tls.Config{ServerName: s.config.Host}))
	} else {
		conn, err = ldap.DialURL("ldap://" + addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to ldap server: %w", err)
	}
	defer conn.Close()

	if s.config.BindDN != "" {
		if err := conn.Bind(s.config.BindDN, s.config.BindPassword); err != nil {
			return nil, fmt.Errorf("bind service account: %w", err)
		}
	}

	req := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 2, 0, false,
		fmt.Sprintf(s.config.UserFilter, ldap.EscapeFilter(login)),
		[]string{"dn", "cn", "mail", "uid", "sAMAccountName"},
		nil,
	)
	result, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(result.Entries) != 1 {
		return nil, ErrLDAPInvalidCredentials
	}

	entry := result.Entries[0]
	if err := conn.Bind(entry.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, ErrLDAPInvalidCredentials
		}
		return nil, fmt.Errorf("bind user: %w", err)
	}

	user := &LDAPUser{
		DN:    entry.DN,
		Email: entry.GetAttributeValue("mail"),
		Name:  entry.GetAttributeValue("cn"),
	}
	if user.Email == "" {
		user.Email = login
	}
	return user, nil
}
