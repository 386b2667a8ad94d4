package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/transform"
)

func writePoses(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poses.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReplay_Table(t *testing.T) {
	path := writePoses(t, "rawPosX;rawPosY;rawPosZ;rawRotX;rawRotY;rawRotZ;rawRotW\n1;0;0;0;0;0;1\n2;0;0;0;0;0;1\n3;0;0;0;0;0;1\n")

	out, err := execute(t, path, "--points", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "(1.0000, 0.0000, 0.0000)")
	assert.Contains(t, out, "Summary: 2 frames, 1 complete, 1 incomplete, 2 points/frame")
}

func TestReplay_JSONWithInitial(t *testing.T) {
	path := writePoses(t, "1;2;3;0;0;0;1\n")
	initial := filepath.Join(t.TempDir(), "init.csv")
	require.NoError(t, transform.WriteInitialPose(initial, pose.Neutral()))

	out, err := execute(t, path, "--json", "--max", "1", "--initial", initial)
	require.NoError(t, err)

	var got struct {
		Frames []struct {
			Index    int          `json:"index"`
			Complete bool         `json:"complete"`
			Points   [][7]float64 `json:"points"`
		} `json:"frames"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Frames, 1)
	assert.True(t, got.Frames[0].Complete)
	assert.Equal(t, [7]float64{1, 2, 3, 0, 0, 0, 1}, got.Frames[0].Points[0])
}

func TestReplay_NoFile(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no pose file"))
}
