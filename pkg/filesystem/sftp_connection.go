package filesystem

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ErrNoSSHAuth is returned when neither an SSH agent nor an unencrypted
// default key is available.
var ErrNoSSHAuth = errors.New("no SSH authentication methods available (tried SSH agent and default keys)")

// DialTimeout bounds the TCP connect and SSH handshake.
const DialTimeout = 15 * time.Second

//nolint:gochecknoglobals // fixed search order
var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// SFTPConnection is one SSH connection carrying one SFTP session.
type SFTPConnection struct {
	ssh       *ssh.Client
	sftp      *sftp.Client
	agentConn net.Conn
}

// Connect logs in as remote.User on remote's server using the SSH agent and
// the default keys in ~/.ssh, then opens an SFTP session.
func Connect(remote *ParsedPath) (*SFTPConnection, error) {
	home, _ := os.UserHomeDir()

	var auth []ssh.AuthMethod

	agentConn, agentAuth := dialAgent(os.Getenv("SSH_AUTH_SOCK"))
	if agentAuth != nil {
		auth = append(auth, agentAuth)
	}

	if keys := loadKeys(home); keys != nil {
		auth = append(auth, keys)
	}

	if len(auth) == 0 {
		return nil, ErrNoSSHAuth
	}

	conn := &SFTPConnection{agentConn: agentConn}

	client, err := ssh.Dial("tcp", remote.Address(), &ssh.ClientConfig{
		User:            remote.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback(home),
		Timeout:         DialTimeout,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	conn.ssh = client

	conn.sftp, err = sftp.NewClient(client, sftp.UseConcurrentWrites(true))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("SFTP session creation failed: %w", err)
	}

	return conn, nil
}

// Client returns the SFTP session.
func (c *SFTPConnection) Client() *sftp.Client {
	return c.sftp
}

// Close ends the SFTP session, the SSH connection and the agent socket.
func (c *SFTPConnection) Close() error {
	var errs []error

	if c.sftp != nil {
		errs = append(errs, c.sftp.Close())
	}

	if c.ssh != nil {
		errs = append(errs, c.ssh.Close())
	}

	if c.agentConn != nil {
		errs = append(errs, c.agentConn.Close())
	}

	return errors.Join(errs...)
}

// hostKeyCallback verifies servers against ~/.ssh/known_hosts when that file
// exists and accepts any key otherwise.
func hostKeyCallback(home string) ssh.HostKeyCallback {
	if home != "" {
		callback, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
		if err == nil {
			return callback
		}
	}

	return ssh.InsecureIgnoreHostKey() //nolint:gosec // no known_hosts to check against
}

func dialAgent(socket string) (net.Conn, ssh.AuthMethod) {
	if socket == "" {
		return nil, nil
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, nil
	}

	return conn, ssh.PublicKeysCallback(agent.NewClient(conn).Signers)
}

// loadKeys returns one auth method holding every readable, unencrypted
// default key, or nil if there are none.
func loadKeys(home string) ssh.AuthMethod {
	if home == "" {
		return nil
	}

	var signers []ssh.Signer

	for _, name := range defaultKeyFiles {
		data, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}

		// Passphrase-protected keys fail here and are left to the agent.
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			continue
		}

		signers = append(signers, signer)
	}

	if len(signers) == 0 {
		return nil
	}

	return ssh.PublicKeys(signers...)
}
