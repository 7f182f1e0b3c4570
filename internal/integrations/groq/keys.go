package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// KeySource supplies the bearer token for upstream calls.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a key read from configuration at startup.
type StaticKey string

func (k StaticKey) APIKey(context.Context) (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ParamKey fetches the key from a parameter store on first use and caches it
// for the lifetime of the process. Failed lookups are retried on the next call.
type ParamKey struct {
	getter Getter
	name   string

	mu  sync.Mutex
	key string
}

func NewParamKey(getter Getter, name string) (*ParamKey, error) {
	if getter == nil {
		return nil, errors.New("groq: paramstore getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("groq: key parameter name must not be empty")
	}
	return &ParamKey{getter: getter, name: name}, nil
}

func (p *ParamKey) APIKey(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key != "" {
		return p.key, nil
	}
	key, err := fetchAPIKeyFromParamStore(ctx, p.getter, p.name)
	if err != nil {
		return "", err
	}
	p.key = key
	return key, nil
}

// fetchAPIKeyFromParamStore accepts either a bare token or a JSON document
// of the form {"token":"..."}.
func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("groq: fetch token from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		if !gjson.Valid(raw) {
			return "", errors.New("groq: paramstore token value is malformed JSON")
		}
		raw = strings.TrimSpace(gjson.Get(raw, "token").String())
	}
	if raw == "" {
		return "", ErrMissingAPIKey
	}
	return raw, nil
}
