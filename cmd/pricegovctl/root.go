package main

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"pricegov/internal/client"
)

const defaultServer = "http://localhost:4001"

// session is persisted between invocations in <home>/session.yaml.
type session struct {
	Server  string `yaml:"server"`
	Email   string `yaml:"email"`
	Role    string `yaml:"role"`
	UserID  int64  `yaml:"user_id"`
	Access  string `yaml:"access"`
	Refresh string `yaml:"refresh"`
}

type cli struct {
	home    string
	server  string
	session session
	api     *client.Client
}

func (c *cli) sessionPath() string {
	return filepath.Join(c.home, "session.yaml")
}

func (c *cli) loadSession() error {
	data, err := os.ReadFile(c.sessionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, &c.session)
}

func (c *cli) saveSession() error {
	if err := os.MkdirAll(c.home, 0o700); err != nil {
		return err
	}
	tokens := c.api.Tokens()
	c.session.Server = c.server
	c.session.Access, c.session.Refresh = tokens.AccessToken, tokens.RefreshToken
	data, err := yaml.Marshal(c.session)
	if err != nil {
		return err
	}
	return os.WriteFile(c.sessionPath(), data, 0o600)
}

func (c *cli) clearSession() error {
	c.session = session{}
	err := os.Remove(c.sessionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "pricegovctl",
		Short:         "Fertilizer price regulation client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				c.home = filepath.Join(dir, ".pricegov")
			}
			if err := c.loadSession(); err != nil {
				return err
			}
			if c.server == "" {
				c.server = os.Getenv("PRICEGOV_URL")
			}
			if c.server == "" {
				c.server = c.session.Server
			}
			if c.server == "" {
				c.server = defaultServer
			}
			c.api = client.New(c.server, &http.Client{Timeout: 30 * time.Second})
			c.api.SetTokens(c.session.Access, c.session.Refresh)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.home, "home", "", "session dir (default ~/.pricegov)")
	root.PersistentFlags().StringVar(&c.server, "server", "", "server base URL (default $PRICEGOV_URL or "+defaultServer+")")

	root.AddCommand(
		loginCmd(c), logoutCmd(c), refreshCmd(c), whoamiCmd(c),
		districtsCmd(c), skusCmd(c), pricesCmd(c), complaintsCmd(c), dashboardCmd(c),
	)
	return root
}
