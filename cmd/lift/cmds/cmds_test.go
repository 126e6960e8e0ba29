package cmds

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouisPinsard/lift/config/liftfile"
	"github.com/LouisPinsard/lift/tests/testutil"
)

const liftYAML = `
service: photos
constructs:
  avatars:
    type: storage
  backups:
    type: storage
    encryption: kms
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	path := testutil.TmpFile(t, "lift.yml", []byte(liftYAML))

	out, err := run(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 construct(s) valid")
}

func TestValidate_InvalidConstruct(t *testing.T) {
	path := testutil.TmpFile(t, "lift.yml", []byte("constructs:\n  avatars:\n    type: storage\n    archive: 3\n"))

	_, err := run(t, "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"archive" must be at least 30`)
}

func TestValidate_ReportsEveryInvalidConstruct(t *testing.T) {
	path := testutil.TmpFile(t, "lift.yml", []byte(`
constructs:
  b:
    type: storage
    encryption: des
  a:
    type: storage
    archive: 3
  c:
    type: storage
`))

	_, err := run(t, "validate", "--config", path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `construct "a"`)
	assert.Contains(t, msg, `"archive" must be at least 30, got 3`)
	assert.Contains(t, msg, `construct "b"`)
	assert.Contains(t, msg, `"encryption" must be one of [s3, kms], got des`)
	assert.NotContains(t, msg, `construct "c"`)
	assert.Less(t, strings.Index(msg, `construct "a"`), strings.Index(msg, `construct "b"`))
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(t, "validate", "--config", filepath.Join(t.TempDir(), "lift.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration found")
}

func TestPermissions(t *testing.T) {
	path := testutil.TmpFile(t, "lift.yml", []byte(liftYAML))

	out, err := run(t, "permissions", "--config", path, "--stack", "photos-test")
	require.NoError(t, err)

	var doc struct {
		Version   string
		Statement []struct {
			Effect   string
			Action   []string
			Resource []interface{}
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2012-10-17", doc.Version)
	require.Len(t, doc.Statement, 2)
	for _, st := range doc.Statement {
		assert.Equal(t, "Allow", st.Effect)
		assert.Contains(t, st.Action, "s3:ListBucket")
		assert.Len(t, st.Resource, 2)
	}
}

func TestBuildInfoData(t *testing.T) {
	file := &liftfile.File{
		Service: "photos",
		Constructs: map[string]liftfile.RawConstruct{
			"backups": {"type": "storage"},
			"avatars": {"type": "storage"},
		},
	}
	data := buildInfoData(file, "photos-dev", map[string]map[string]*string{
		"avatars": {"bucketName": jsii.String("photos-avatars-1")},
		"backups": {"bucketName": nil},
	})

	assert.Equal(t, "photos-dev", data.Stack)
	require.Len(t, data.Constructs, 2)
	assert.Equal(t, "avatars", data.Constructs[0].ID)
	assert.Equal(t, "storage", data.Constructs[0].Type)
	assert.True(t, data.Constructs[0].Outputs[0].Published)
	assert.Equal(t, "photos-avatars-1", data.Constructs[0].Outputs[0].Value)
	assert.False(t, data.Constructs[1].Outputs[0].Published)
}
