package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNARInfo = `StorePath: /shed/store/q3c9l0fpzw8r2h5m-openssl-3.0.13
URL: nar/q3c9l0fpzw8r2h5m.nar.xz
Compression: xz
FileHash: sha256:0c4q3v0siqvvhz8jd9ifpz8q5r0c7m1l2n3p4s5v6w7x8y9z0a1b
FileSize: 1048576
NarHash: sha256:1d5r4w1tjrwwia9ke0jgqa9r6s1d8n2m3p4q5t6w7x8y9z0a1b2c
NarSize: 4194304
References: b7kd21xnpa4s9j3v-glib-2.78.4
Deriver: xyz-openssl-3.0.13.drv
Sig: cache.example.org-1:abcdef
`

func TestParseNARInfo(t *testing.T) {
	info, err := ParseNARInfo(sampleNARInfo)
	require.NoError(t, err)

	assert.Equal(t, "/shed/store/q3c9l0fpzw8r2h5m-openssl-3.0.13", info.StorePath)
	assert.Equal(t, "nar/q3c9l0fpzw8r2h5m.nar.xz", info.URL)
	assert.Equal(t, "xz", info.Compression)
	assert.Equal(t, "0c4q3v0siqvvhz8jd9ifpz8q5r0c7m1l2n3p4s5v6w7x8y9z0a1b", info.FileHash, "sha256: prefix is stripped")
	assert.Equal(t, int64(1048576), info.FileSize)
	assert.Equal(t, int64(4194304), info.NarSize)
	assert.Equal(t, []string{"b7kd21xnpa4s9j3v-glib-2.78.4"}, info.References)
	assert.Equal(t, "cache.example.org-1:abcdef", info.Signature)
}

func TestParseNARInfo_DefaultCompression(t *testing.T) {
	info, err := ParseNARInfo("StorePath: /s/x\nURL: nar/x.nar\n")
	require.NoError(t, err)
	assert.Equal(t, "none", info.Compression)
}

func TestParseNARInfo_MissingFields(t *testing.T) {
	_, err := ParseNARInfo("URL: nar/x.nar\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StorePath")

	_, err = ParseNARInfo("StorePath: /s/x\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestParseNARInfo_IgnoresUnknownKeys(t *testing.T) {
	info, err := ParseNARInfo("StorePath: /s/x\nURL: nar/x.nar\nCA: fixed:r:sha256:xyz\n")
	require.NoError(t, err)
	assert.Equal(t, "/s/x", info.StorePath)
}
