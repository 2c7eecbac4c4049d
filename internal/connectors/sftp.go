package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// UploadSFTPConfig is the configuration payload for upload_sftp tasks. The
// uploaded bytes come from a prior stage output.
type UploadSFTPConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port,omitempty"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
	// HostPublicKey pins the server key (authorized_keys format). When empty
	// the server key is not verified.
	HostPublicKey string `json:"host_public_key,omitempty"`
	RemotePath    string `json:"remote_path"`
	SourceKey     string `json:"source_key"`
}

// UploadSFTPConnector transfers a prior stage output to an SFTP server. Its
// output is the remote path.
type UploadSFTPConnector struct {
	logger *slog.Logger
}

var _ core.Connector = (*UploadSFTPConnector)(nil)

// NewUploadSFTPConnector constructs an UploadSFTPConnector.
func NewUploadSFTPConnector(logger *slog.Logger) *UploadSFTPConnector {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadSFTPConnector{logger: logger}
}

// Kind implements core.Connector.
func (c *UploadSFTPConnector) Kind() model.TaskType { return model.TaskTypeUploadSFTP }

// RequiresConfig implements core.Connector.
func (c *UploadSFTPConnector) RequiresConfig() bool { return true }

// Run implements core.Connector.
func (c *UploadSFTPConnector) Run(ctx context.Context, req core.WorkRequest) (*core.WorkResult, error) {
	var cfg UploadSFTPConfig
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decode upload_sftp config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	content, err := resolveContent(req.Stage, cfg.SourceKey, nil)
	if err != nil {
		return nil, err
	}

	client, closeAll, err := c.dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	if dir := path.Dir(cfg.RemotePath); dir != "." && dir != "/" {
		if err := client.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("create remote directory %s: %w", dir, err)
		}
	}

	remote, err := client.Create(cfg.RemotePath)
	if err != nil {
		return nil, fmt.Errorf("create remote file %s: %w", cfg.RemotePath, err)
	}
	if _, err := remote.Write(content); err != nil {
		_ = remote.Close()
		return nil, fmt.Errorf("write remote file %s: %w", cfg.RemotePath, err)
	}
	if err := remote.Close(); err != nil {
		return nil, fmt.Errorf("close remote file %s: %w", cfg.RemotePath, err)
	}

	c.logger.InfoContext(ctx, "sftp upload complete",
		"host", cfg.Host, "remote_path", cfg.RemotePath, "bytes", len(content))

	return &core.WorkResult{
		Output: []byte(cfg.RemotePath),
		Detail: fmt.Sprintf("uploaded %d byte(s) to %s:%s", len(content), cfg.Host, cfg.RemotePath),
	}, nil
}

func (cfg *UploadSFTPConfig) validate() error {
	if strings.TrimSpace(cfg.Host) == "" {
		return errors.New("upload_sftp config: host is required")
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return errors.New("upload_sftp config: username is required")
	}
	if cfg.Password == "" && cfg.PrivateKey == "" {
		return errors.New("upload_sftp config: password or private_key is required")
	}
	if strings.TrimSpace(cfg.RemotePath) == "" {
		return errors.New("upload_sftp config: remote_path is required")
	}
	if strings.TrimSpace(cfg.SourceKey) == "" {
		return errors.New("upload_sftp config: source_key is required")
	}
	return nil
}

// dial establishes the SSH connection under ctx and opens an SFTP session on
// top of it. The returned closer tears down both.
func (c *UploadSFTPConnector) dial(ctx context.Context, cfg UploadSFTPConfig) (*sftp.Client, func(), error) {
	auth, err := cfg.authMethods()
	if err != nil {
		return nil, nil, err
	}
	hostKeyCallback, err := cfg.hostKeyCallback()
	if err != nil {
		return nil, nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	address := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))

	sshCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         15 * time.Second,
	}

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", address, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, sshCfg)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("ssh handshake with %s: %w", address, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("open sftp session: %w", err)
	}

	closeAll := func() {
		_ = sftpClient.Close()
		_ = sshClient.Close()
	}
	return sftpClient, closeAll, nil
}

func (cfg *UploadSFTPConfig) authMethods() ([]ssh.AuthMethod, error) {
	var auth []ssh.AuthMethod
	if cfg.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	return auth, nil
}

func (cfg *UploadSFTPConfig) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if cfg.HostPublicKey == "" {
		// No pinned key configured; the transfer proceeds unverified.
		//nolint:gosec // operator opted out of host key pinning
		return ssh.InsecureIgnoreHostKey(), nil
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.HostPublicKey))
	if err != nil {
		return nil, fmt.Errorf("parse host public key: %w", err)
	}
	return ssh.FixedHostKey(key), nil
}
