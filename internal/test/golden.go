package test

import (
	"encoding/hex"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-bbs/pkg/bbsplus"
)

var update = flag.Bool("update", false, "rewrite golden signatures in testdata")

// GoldenSignature is the hex encoding of (A, e, s), as stored in testdata.
type GoldenSignature struct {
	A string `toml:"a"`
	E string `toml:"e"`
	S string `toml:"s"`
}

// Encode returns the hex encoding of each component of sig.
func Encode(sig *bbsplus.Signature) (GoldenSignature, error) {
	var out GoldenSignature
	for _, part := range []struct {
		dst *string
		src interface{ MarshalBinary() ([]byte, error) }
	}{{&out.A, sig.A}, {&out.E, sig.E}, {&out.S, sig.S}} {
		b, err := part.src.MarshalBinary()
		if err != nil {
			return out, err
		}
		*part.dst = hex.EncodeToString(b)
	}
	return out, nil
}

// CheckGolden compares sig with the signature stored in testdata/<name>.toml.
// The file is written instead when -update is set or when it does not exist yet.
func CheckGolden(t testing.TB, name string, sig *bbsplus.Signature) {
	t.Helper()
	got, err := Encode(sig)
	require.NoError(t, err)

	path := filepath.Join("testdata", name+".toml")
	if _, err = os.Stat(path); *update || os.IsNotExist(err) {
		require.NoError(t, os.MkdirAll("testdata", 0o755))
		f, err := os.Create(path)
		require.NoError(t, err)
		defer f.Close()
		require.NoError(t, toml.NewEncoder(f).Encode(got))
		t.Logf("wrote golden signature %s", path)
		return
	}

	var want GoldenSignature
	_, err = toml.DecodeFile(path, &want)
	require.NoError(t, err)
	require.Equal(t, want, got, "signature differs from %s", path)
}
