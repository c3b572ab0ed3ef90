package envdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_Prepend(t *testing.T) {
	a := NewPathList("PATH", "/shed/a/bin")
	b := NewPathList("PATH", "/shed/b/bin")

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"/shed/b/bin", "/shed/a/bin"}, merged.Values)
	assert.True(t, merged.Inherit)
}

func TestMerge_Append(t *testing.T) {
	a := NewPathList("PKG_CONFIG_PATH", "/shed/a/lib/pkgconfig")
	b := NewPathList("PKG_CONFIG_PATH", "/shed/b/lib/pkgconfig")
	b.Join = Append

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"/shed/a/lib/pkgconfig", "/shed/b/lib/pkgconfig"}, merged.Values)
}

func TestMerge_DropsDuplicates(t *testing.T) {
	a := NewPathList("PATH", "/shed/a/bin", "/shed/b/bin")
	b := NewPathList("PATH", "/shed/b/bin")

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"/shed/b/bin", "/shed/a/bin"}, merged.Values)
}

func TestMerge_ExclusiveConflicts(t *testing.T) {
	a := NewScalar("OPENSSL_LIB_DIR", "/shed/openssl/lib")
	b := NewScalar("OPENSSL_LIB_DIR", "/elsewhere/lib")

	_, err := a.Merge(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENSSL_LIB_DIR")
}

func TestMerge_NameMismatch(t *testing.T) {
	a := NewPathList("PATH", "/bin")
	b := NewPathList("MANPATH", "/man")

	_, err := a.Merge(b)
	require.Error(t, err)
}

func TestDefinition_AddAndOrder(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewPathList("PATH", "/shed/gcc/bin")))
	require.NoError(t, d.Add(NewScalar("SOURCE_DATE_EPOCH", "315532800")))
	require.NoError(t, d.Add(NewPathList("PATH", "/shed/pkgconf/bin")))

	vars := d.Variables()
	require.Len(t, vars, 2)
	assert.Equal(t, "PATH", vars[0].Name)
	assert.Equal(t, []string{"/shed/pkgconf/bin", "/shed/gcc/bin"}, vars[0].Values)
	assert.Equal(t, "SOURCE_DATE_EPOCH", vars[1].Name)
}

func TestReplaceString(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewPathList("LD_LIBRARY_PATH", "${STORE}/openssl/lib")))
	d.ReplaceString("${STORE}", "/var/lib/shed/store")

	v, ok := d.Lookup("LD_LIBRARY_PATH")
	require.True(t, ok)
	assert.Equal(t, []string{"/var/lib/shed/store/openssl/lib"}, v.Values)
}

func TestEnviron_InheritAppendsBase(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewPathList("PATH", "/shed/gcc/bin")))

	env := d.Environ(map[string]string{"PATH": "/usr/bin:/bin"})
	require.Len(t, env, 1)
	assert.Equal(t, "PATH=/shed/gcc/bin:/usr/bin:/bin", env[0])
}

func TestEnviron_OmitsEmpty(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewPathList("GST_PLUGIN_SYSTEM_PATH_1_0")))

	env := d.Environ(nil)
	assert.Empty(t, env, "variables with no contributing values are omitted")
}

func TestEnviron_NoInheritShadows(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewScalar("RUST_SRC_PATH", "/shed/rust-src/lib/rustlib/src")))

	env := d.Environ(map[string]string{"RUST_SRC_PATH": "/old"})
	require.Len(t, env, 1)
	assert.Equal(t, "RUST_SRC_PATH=/shed/rust-src/lib/rustlib/src", env[0])
}

func TestApply(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewScalar("CC", "gcc")))

	out := d.Apply(map[string]string{"HOME": "/home/dev", "CC": "clang"})
	assert.Equal(t, "gcc", out["CC"])
	assert.Equal(t, "/home/dev", out["HOME"])
}

func TestExportScript_QuotesAndOrder(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewPathList("LD_LIBRARY_PATH", "/shed/glib/lib", "/shed/openssl/lib")))
	require.NoError(t, d.Add(NewScalar("SHELL_HOOK", "echo hello world")))

	script := d.ExportScript(nil)
	assert.Equal(t,
		"export LD_LIBRARY_PATH=/shed/glib/lib:/shed/openssl/lib\n"+
			"export SHELL_HOOK='echo hello world'\n",
		script)
}

func TestExportScript_SingleQuoteEscape(t *testing.T) {
	d := NewDefinition()
	require.NoError(t, d.Add(NewScalar("MOTD", "it's here")))

	script := d.ExportScript(nil)
	assert.Equal(t, `export MOTD='it'\''s here'`+"\n", script)
}

func TestJoinText(t *testing.T) {
	var j Join
	require.NoError(t, j.UnmarshalText([]byte("append")))
	assert.Equal(t, Append, j)

	require.NoError(t, j.UnmarshalText([]byte("")))
	assert.Equal(t, Prepend, j)

	require.Error(t, j.UnmarshalText([]byte("sideways")))

	text, err := Exclusive.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "exclusive", string(text))
}

func TestEnvironToMap(t *testing.T) {
	m := EnvironToMap([]string{"A=1", "B=x=y", "MALFORMED", "A=2"})
	assert.Equal(t, "2", m["A"])
	assert.Equal(t, "x=y", m["B"])
	_, ok := m["MALFORMED"]
	assert.False(t, ok)
}
