package userenum

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shareListing = `Anonymous login successful

	Sharename       Type      Comment
	---------       ----      -------
	IPC$            IPC       IPC Service (Samba 4.15)
	homes           Disk      Home directories of each user
	alice           Disk      Home of user alice
SMB1 disabled -- no workgroup available
`

func TestParseShareListing(t *testing.T) {
	assert.Equal(t, []string{"homes", "alice"}, parseShareListing(shareListing))
	assert.Empty(t, parseShareListing("Connection to 10.0.0.1 failed (Error NT_STATUS_CONNECTION_REFUSED)"))
}

func TestParseShareListing_CapsLines(t *testing.T) {
	out := ""
	for i := 0; i < 30; i++ {
		out += "share" + string(rune('a'+i%26)) + " Disk user data\n"
	}
	assert.Len(t, parseShareListing(out), 20)
}

func TestParseCheckOutput(t *testing.T) {
	tests := []struct {
		out  string
		want SMBStatus
	}{
		{"session setup failed: NT_STATUS_LOGON_FAILURE", SMBUserExists},
		{"session setup failed: nt_status_account_locked_out", SMBUserExists},
		{"session setup failed: NT_STATUS_NO_SUCH_USER", SMBNoSuchUser},
		{"Connection to host failed (Error NT_STATUS_IO_TIMEOUT)", SMBUnknown},
		{"", SMBUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCheckOutput(tt.out), tt.out)
	}
}

func fakeSmbclient(out string, runErr error) (*Smbclient, *[]string) {
	var args []string
	c := NewSmbclient("", 0)
	c.lookPath = func(string) (string, error) { return "/usr/bin/smbclient", nil }
	c.run = func(_ context.Context, name string, a ...string) ([]byte, error) {
		args = append([]string{name}, a...)
		return []byte(out), runErr
	}
	return c, &args
}

func TestSmbclient_ListUsers(t *testing.T) {
	c, args := fakeSmbclient(shareListing, nil)

	users, err := c.ListUsers(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"homes", "alice"}, users)
	assert.Equal(t, []string{"/usr/bin/smbclient", "-L", "10.0.0.5", "-N"}, *args)
}

func TestSmbclient_CheckUser(t *testing.T) {
	c, args := fakeSmbclient("session setup failed: NT_STATUS_LOGON_FAILURE", &exec.ExitError{})

	status, err := c.CheckUser(context.Background(), "10.0.0.5", "alice")
	require.NoError(t, err, "non-zero exit is expected")
	assert.Equal(t, SMBUserExists, status)
	assert.Equal(t, []string{"/usr/bin/smbclient", `\\10.0.0.5\IPC$`, "-U", "alice", "-N", "-c", "exit"}, *args)
}

func TestSmbclient_RunFailure(t *testing.T) {
	c, _ := fakeSmbclient("", errors.New("signal: killed"))
	_, err := c.ListUsers(context.Background(), "10.0.0.5")
	assert.Error(t, err)
}

func TestSmbclient_MissingBinary(t *testing.T) {
	c := NewSmbclient("definitely-not-installed-smbclient", 0)

	_, err := c.ListUsers(context.Background(), "10.0.0.5")
	assert.ErrorIs(t, err, ErrToolUnavailable)

	_, err = c.CheckUser(context.Background(), "10.0.0.5", "alice")
	assert.ErrorIs(t, err, ErrToolUnavailable)
}
