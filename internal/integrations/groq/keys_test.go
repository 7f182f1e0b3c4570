package groq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeGetter is a minimal paramstore.Getter stub for use within this package.
type fakeGetter struct {
	val    string
	err    error
	calls  int
	errFor int // fail the first errFor calls
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil && f.calls <= f.errFor {
		return "", f.err
	}
	return f.val, nil
}

func TestStaticKey(t *testing.T) {
	key, err := StaticKey(" gsk-1 ").APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gsk-1", key)

	_, err = StaticKey("   ").APIKey(context.Background())
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewParamKey_Validates(t *testing.T) {
	_, err := NewParamKey(nil, "/khata/groq")
	require.Error(t, err)

	_, err = NewParamKey(&fakeGetter{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestParamKey_FetchedOnce(t *testing.T) {
	g := &fakeGetter{val: `{"token":"gsk-from-ssm"}`}
	p, err := NewParamKey(g, "/khata/groq")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		key, err := p.APIKey(context.Background())
		require.NoError(t, err)
		require.Equal(t, "gsk-from-ssm", key)
	}
	require.Equal(t, 1, g.calls, "parameter store must only be called once per process lifetime")
}

func TestParamKey_RetriesAfterFailure(t *testing.T) {
	g := &fakeGetter{val: "gsk-raw", err: errors.New("ssm unavailable"), errFor: 1}
	p, err := NewParamKey(g, "/khata/groq")
	require.NoError(t, err)

	_, err = p.APIKey(context.Background())
	require.ErrorContains(t, err, "ssm unavailable")

	key, err := p.APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gsk-raw", key)
}

func TestFetchAPIKey_Formats(t *testing.T) {
	cases := []struct {
		name    string
		val     string
		want    string
		wantErr string
	}{
		{name: "json token", val: `{"token":"gsk-json"}`, want: "gsk-json"},
		{name: "raw token", val: "  gsk-raw\n", want: "gsk-raw"},
		{name: "json without token", val: `{"other":"x"}`, wantErr: "not configured"},
		{name: "malformed json", val: `{"broken`, wantErr: "malformed"},
		{name: "empty", val: "", wantErr: "not configured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := fetchAPIKeyFromParamStore(context.Background(), &fakeGetter{val: tc.val}, "/khata/groq")
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, key)
		})
	}
}
