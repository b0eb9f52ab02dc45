package hookgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	almemory "github.com/hookgate/hookgate/service/allowlist/memory"
	"github.com/hookgate/hookgate/service/messenger"
	msgmemory "github.com/hookgate/hookgate/service/messenger/memory"
)

func newTestService(t *testing.T, timeoutSeconds int) (*Service, *msgmemory.Service, *almemory.Service) {
	t.Helper()
	store := almemory.New()
	channel := msgmemory.New()
	config := DefaultConfig()
	config.Hostname = "devbox"
	config.Preferences.TimeoutSeconds = timeoutSeconds
	svc, err := New(context.Background(), config, WithStore(store), WithMessenger(channel))
	assert.NoError(t, err)
	return svc, channel, store
}

// pressWhenPublished simulates a human pressing a button once the prompt
// shows up on the channel.
func pressWhenPublished(channel *msgmemory.Service, action messenger.Action, tool string) {
	go func() {
		for i := 0; i < 200; i++ {
			if published := channel.Published(); len(published) > 0 {
				channel.Inject(messenger.Reply{
					RequestID: published[len(published)-1].RequestID,
					Action:    action,
					Tool:      tool,
				})
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func decodeBehavior(t *testing.T, out *bytes.Buffer) string {
	t.Helper()
	var decoded map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	decision := decoded["hookSpecificOutput"]["decision"].(map[string]interface{})
	return decision["behavior"].(string)
}

func TestHandlePermission_ApprovedByButton(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)
	pressWhenPublished(channel, messenger.ActionApprove, "")

	var out bytes.Buffer
	err := svc.HandlePermission(context.Background(),
		strings.NewReader(`{"tool_name":"Bash","tool_input":{"command":"ls"}}`), &out)
	assert.NoError(t, err)
	assert.Equal(t, "allow", decodeBehavior(t, &out))
	if assert.Len(t, channel.Published(), 1) {
		assert.Equal(t, "Bash", channel.Published()[0].Tool)
		assert.Equal(t, "devbox", channel.Published()[0].Hostname)
	}
}

func TestHandlePermission_DeniedByButton(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)
	pressWhenPublished(channel, messenger.ActionDeny, "")

	var out bytes.Buffer
	err := svc.HandlePermission(context.Background(),
		strings.NewReader(`{"tool_name":"Bash"}`), &out)
	assert.NoError(t, err)
	assert.Equal(t, "deny", decodeBehavior(t, &out))
}

func TestHandlePermission_AlwaysAllowPersistsAcrossInvocations(t *testing.T) {
	svc, channel, store := newTestService(t, 5)
	pressWhenPublished(channel, messenger.ActionAlwaysAllow, "Bash")

	var first bytes.Buffer
	err := svc.HandlePermission(context.Background(),
		strings.NewReader(`{"tool_name":"Bash"}`), &first)
	assert.NoError(t, err)
	assert.Equal(t, "allow", decodeBehavior(t, &first))
	assert.True(t, store.IsAllowed(context.Background(), "Bash"))

	// the next invocation resolves without publishing a prompt
	var second bytes.Buffer
	err = svc.HandlePermission(context.Background(),
		strings.NewReader(`{"tool_name":"Bash"}`), &second)
	assert.NoError(t, err)
	assert.Equal(t, "allow", decodeBehavior(t, &second))
	assert.Len(t, channel.Published(), 1)
	assert.Len(t, channel.AutoApproved(), 1)
}

func TestHandlePermission_TimeoutDenies(t *testing.T) {
	svc, channel, _ := newTestService(t, 1)

	var out bytes.Buffer
	err := svc.HandlePermission(context.Background(),
		strings.NewReader(`{"tool_name":"Bash"}`), &out)
	assert.NoError(t, err)
	assert.Equal(t, "deny", decodeBehavior(t, &out))
	assert.EqualValues(t, []messenger.Status{messenger.StatusTimedOut}, channel.Statuses())
}

func TestHandlePermission_MalformedInputFailsClosed(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)

	var out bytes.Buffer
	err := svc.HandlePermission(context.Background(), strings.NewReader(`{broken`), &out)
	assert.Error(t, err)
	assert.Equal(t, "deny", decodeBehavior(t, &out))
	assert.Empty(t, channel.Published())
}

func TestHandlePermission_PublishFailureDeniesAndErrors(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)
	channel.FailPublish(errors.New("channel unreachable"))

	// the deny is still written fail-closed, but the failure surfaces so
	// the caller can tell the approver never saw the request
	var out bytes.Buffer
	err := svc.HandlePermission(context.Background(),
		strings.NewReader(`{"tool_name":"Bash","tool_input":{"command":"ls"}}`), &out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "channel unreachable")
	assert.Equal(t, "deny", decodeBehavior(t, &out))
	assert.Empty(t, channel.Published())
}

func TestHandlePermission_MissingToolNameDefaults(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)
	pressWhenPublished(channel, messenger.ActionDeny, "")

	var out bytes.Buffer
	err := svc.HandlePermission(context.Background(), strings.NewReader(`{}`), &out)
	assert.NoError(t, err)
	if assert.Len(t, channel.Published(), 1) {
		assert.Equal(t, "unknown", channel.Published()[0].Tool)
	}
}

func TestHandleStop_SendsCompletionNotice(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)

	err := svc.HandleStop(context.Background(),
		strings.NewReader(`{"session_id":"s1","cwd":"/home/user/myproject"}`))
	assert.NoError(t, err)
	if assert.Len(t, channel.Notices(), 1) {
		assert.Contains(t, channel.Notices()[0], "Job Completed")
		assert.Contains(t, channel.Notices()[0], "myproject")
	}
}

func TestHandleNotification_RelaysEvent(t *testing.T) {
	svc, channel, _ := newTestService(t, 5)

	err := svc.HandleNotification(context.Background(),
		strings.NewReader(`{"notification_type":"permission_prompt","message":"waiting"}`))
	assert.NoError(t, err)
	if assert.Len(t, channel.Notices(), 1) {
		assert.Contains(t, channel.Notices()[0], "Permission Required")
		assert.Contains(t, channel.Notices()[0], "waiting")
	}
}

func TestNew_InvalidConfigRejected(t *testing.T) {
	config := &Config{Preferences: PreferencesConfig{TimeoutSeconds: 300}}
	_, err := New(context.Background(), config)
	assert.Error(t, err)
}
