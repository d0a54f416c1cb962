package filesystem

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidSFTPURL is wrapped by every ParsePath failure on an sftp:// path.
var ErrInvalidSFTPURL = errors.New("invalid SFTP URL")

const (
	sftpScheme  = "sftp://"
	defaultPort = 22
	maxPort     = 65535
)

// ParsedPath is either a local path or the pieces of an SFTP URL.
type ParsedPath struct {
	IsRemote bool

	LocalPath string

	Host string
	Port int
	User string
	// Path is the remote path: relative to the login directory unless it
	// starts with "/".
	Path string
}

// Address returns host:port for dialing.
func (p *ParsedPath) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// String returns the path in the form it was given.
func (p *ParsedPath) String() string {
	if !p.IsRemote {
		return p.LocalPath
	}

	return fmt.Sprintf("%s%s@%s/%s", sftpScheme, p.User, p.Address(), p.Path)
}

// SameRemote reports whether p and other name the same login on the same server.
func (p *ParsedPath) SameRemote(other *ParsedPath) bool {
	return p.IsRemote && other.IsRemote &&
		p.Host == other.Host && p.Port == other.Port && p.User == other.User
}

// IsRemotePath reports whether path is an SFTP URL.
func IsRemotePath(path string) bool {
	return strings.HasPrefix(path, sftpScheme)
}

// ParsePath splits an operation path into its filesystem and location.
//
//	sftp://joe@server/data         data, relative to joe's login directory
//	sftp://joe@server:2222//srv/x  /srv/x
//	sftp://joe@server              the login directory itself
//	/local/path                    a local path, unchanged
func ParsePath(path string) (*ParsedPath, error) {
	if !IsRemotePath(path) {
		return &ParsedPath{LocalPath: path}, nil
	}

	u, err := url.Parse(path) //nolint:varnamelen // u is idiomatic for URL
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSFTPURL, err)
	}

	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("%w: SFTP URL must include username (sftp://user@host/path)", ErrInvalidSFTPURL)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: SFTP URL must include host", ErrInvalidSFTPURL)
	}

	port := defaultPort

	if raw := u.Port(); raw != "" {
		port, err = strconv.Atoi(raw)
		if err != nil || port < 1 || port > maxPort {
			return nil, fmt.Errorf("%w: invalid port number %q", ErrInvalidSFTPURL, raw)
		}
	}

	return &ParsedPath{
		IsRemote: true,
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Path:     remotePath(u.Path),
	}, nil
}

// remotePath maps a URL path onto the server: one leading slash is the
// separator after the host, a second one makes the path absolute.
func remotePath(urlPath string) string {
	switch {
	case urlPath == "" || urlPath == "/":
		return "."
	case strings.HasPrefix(urlPath, "//"):
		return urlPath[1:]
	default:
		return strings.TrimPrefix(urlPath, "/")
	}
}
