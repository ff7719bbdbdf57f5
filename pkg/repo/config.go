package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/KisukeMaybe/Git-Clone/pkg/object"
)

// ConfigFileName is the repository-local config file inside .git/.
const ConfigFileName = "config.toml"

// Identity environment overrides, checked before the config file.
const (
	EnvAuthorName     = "MGIT_AUTHOR_NAME"
	EnvAuthorEmail    = "MGIT_AUTHOR_EMAIL"
	EnvCommitterName  = "MGIT_COMMITTER_NAME"
	EnvCommitterEmail = "MGIT_COMMITTER_EMAIL"
)

// Config stores repository-local settings.
type Config struct {
	User      Identity   `toml:"user"`
	Committer Identity   `toml:"committer"`
	Core      CoreConfig `toml:"core"`
}

// Identity is a name and email pair used in commit headers.
type Identity struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// CoreConfig tunes the object store.
type CoreConfig struct {
	// Compression is the zlib level for new objects, -1 through 9.
	Compression int `toml:"compression"`
	// CacheSize is the number of decoded objects kept in memory.
	CacheSize int `toml:"cache_size"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		User:      Identity{Name: "Author Name", Email: "author@example.com"},
		Committer: Identity{Name: "Committer Name", Email: "committer@example.com"},
		Core:      CoreConfig{Compression: -1, CacheSize: 256},
	}
}

// Validate reports settings the store cannot honor.
func (c *Config) Validate() error {
	if c.Core.Compression < -1 || c.Core.Compression > 9 {
		return fmt.Errorf("core.compression %d out of range [-1, 9]", c.Core.Compression)
	}
	if c.Core.CacheSize < 0 {
		return fmt.Errorf("core.cache_size %d must not be negative", c.Core.CacheSize)
	}
	for _, id := range []Identity{c.User, c.Committer} {
		if strings.ContainsAny(id.Name, "<>\n") || strings.ContainsAny(id.Email, "<>\n") {
			return fmt.Errorf("identity %q <%s> must not contain '<', '>' or newlines", id.Name, id.Email)
		}
	}
	return nil
}

// AuthorAt returns the author signature for a commit made at when.
func (c *Config) AuthorAt(when time.Time) object.Signature {
	return object.Signature{
		Name:  envOr(EnvAuthorName, c.User.Name),
		Email: envOr(EnvAuthorEmail, c.User.Email),
		When:  when,
	}
}

// CommitterAt returns the committer signature for a commit made at when.
// Blank [committer] fields fall back to [user].
func (c *Config) CommitterAt(when time.Time) object.Signature {
	id := c.Committer
	if strings.TrimSpace(id.Name) == "" {
		id.Name = c.User.Name
	}
	if strings.TrimSpace(id.Email) == "" {
		id.Email = c.User.Email
	}
	return object.Signature{
		Name:  envOr(EnvCommitterName, id.Name),
		Email: envOr(EnvCommitterEmail, id.Email),
		When:  when,
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func configPath(gitDir string) string {
	return filepath.Join(gitDir, ConfigFileName)
}

// readConfigFile decodes a TOML config over the defaults. A missing file
// yields the defaults.
func readConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig re-reads .git/config.toml. A missing config returns the
// defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	return readConfigFile(configPath(r.GitDir))
}

// WriteConfig atomically writes .git/config.toml and makes cfg the active
// config. Store tuning takes effect the next time the repo is opened.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}
	if err := writeFileAtomic(r.GitDir, configPath(r.GitDir), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	r.Config = cfg
	return nil
}
