package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/campass/campass/pkg/account"
	"github.com/campass/campass/pkg/credman"
	"github.com/campass/campass/pkg/logger"
	"github.com/campass/campass/pkg/store"
	"github.com/campass/campass/pkg/transport"
)

const (
	stateFileName = "campass.db"
	logFileName   = "campass.log"
)

// session bundles the pieces every command needs: the on-disk state
// store, the credential manager, the shared transport and a logger.
type session struct {
	st      *store.SQLiteStore
	cm      *credman.Manager
	tr      *transport.HTTPTransport
	log     logger.Logger
	logFile *os.File
}

func newSession(verbose bool) (*session, error) {
	dir, err := store.ConfigDir()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(filepath.Join(dir, stateFileName))
	if err != nil {
		return nil, err
	}
	var lg logger.Logger = logger.NewNopLogger()
	var logFile *os.File
	if verbose {
		console := logger.NewStandardLogger(log.New(os.Stderr, "campass: ", log.LstdFlags))
		logFile, err = os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			lg = logger.NewMultiLogger(console,
				logger.NewStandardLogger(log.New(logFile, "", log.LstdFlags)))
		} else {
			// No log file is not fatal; keep the console.
			lg = console
			console.Warning("open %s: %v", logFileName, err)
		}
	}
	key, err := credman.LoadKey(dir)
	if err != nil {
		st.Close()
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}
	return &session{
		st:      st,
		cm:      credman.NewManager(st, key),
		tr:      transport.NewHTTPTransport(),
		log:     lg,
		logFile: logFile,
	}, nil
}

func (s *session) Close() error {
	s.log.Close()
	if s.logFile != nil {
		s.logFile.Close()
	}
	return s.st.Close()
}

// ssoAccount builds the SSO account, restoring the persisted routing
// mode unless --vpn forced it on.
func (s *session) ssoAccount(forceVPN bool) *account.SsoAccount {
	useVPN := forceVPN
	if !useVPN {
		if v, ok, _ := s.st.Get(store.KeyEaUseVpn); ok && v == "1" {
			useVPN = true
		}
	}
	return account.NewSsoAccount(s.tr, s.st, s.cm, s.log, account.SessionConfig{UseVPN: useVPN})
}

func (s *session) portalAccount() *account.PortalAccount {
	return account.NewPortalAccount(s.tr, s.st, s.cm, s.log)
}
