package syncbus

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// ResetMessage is shown to the user before a global reset reloads the client.
const ResetMessage = "The system was reset by the administrator. The page will reload."

// Prompter shows a blocking warning to the user.
type Prompter interface {
	Warn(message string)
}

// Reloader restarts the client after its state was wiped.
type Reloader interface {
	Reload()
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(message string)

func (f PrompterFunc) Warn(message string) { f(message) }

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func()

func (f ReloaderFunc) Reload() { f() }

// ResetGuard wipes the medium when an administrator issued a reset token this medium has not acknowledged.
type ResetGuard struct {
	medium    medium.Medium
	signalKey string
	ackKey    string
	prompter  Prompter
	reloader  Reloader
	logger    *zap.Logger
}

// NewResetGuard returns a guard over m. p and r may be nil.
func NewResetGuard(m medium.Medium, ks schema.Keyspace, p Prompter, r Reloader, logger *zap.Logger) *ResetGuard {
	return &ResetGuard{
		medium:    m,
		signalKey: ks.Key(schema.GlobalResetSignal),
		ackKey:    ks.Key(schema.ResetAck),
		prompter:  p,
		reloader:  r,
		logger:    logging.OrNop(logger),
	}
}

// SignalKey is the key other clients watch for reset tokens.
func (g *ResetGuard) SignalKey() string { return g.signalKey }

// Check compares the reset token with the acknowledged one. On mismatch it clears the whole
// medium, restores the token as both signal and acknowledgement, warns the user and reloads.
func (g *ResetGuard) Check() (bool, error) {
	token, err := g.medium.Get(g.signalKey)
	if errors.Is(err, medium.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read reset signal: %w", err)
	}
	ack, err := g.medium.Get(g.ackKey)
	if err != nil && !errors.Is(err, medium.ErrKeyNotFound) {
		return false, fmt.Errorf("read reset ack: %w", err)
	}
	if token == "" || token == ack {
		return false, nil
	}

	g.logger.Warn("global reset signal received, wiping medium", zap.String("token", token))
	if err := g.medium.Clear(); err != nil {
		return false, fmt.Errorf("wipe medium: %w", err)
	}
	// The token survives the wipe so the next check sees it acknowledged
	if err := g.medium.Set(g.signalKey, token); err != nil {
		return true, fmt.Errorf("restore reset signal: %w", err)
	}
	if err := g.medium.Set(g.ackKey, token); err != nil {
		return true, fmt.Errorf("acknowledge reset: %w", err)
	}

	if g.prompter != nil {
		g.prompter.Warn(ResetMessage)
	}
	if g.reloader != nil {
		g.reloader.Reload()
	}
	return true, nil
}

// Issue publishes a new reset token, generating one when token is empty.
// Every client, the issuer included, wipes itself on its next check.
func (g *ResetGuard) Issue(token string) (string, error) {
	if token == "" {
		token = uuid.NewString()
	}
	if err := g.medium.Set(g.signalKey, token); err != nil {
		return "", fmt.Errorf("issue reset signal: %w", err)
	}
	g.logger.Info("global reset issued", zap.String("token", token))
	return token, nil
}
