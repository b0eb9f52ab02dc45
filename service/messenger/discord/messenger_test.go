package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/hookgate/hookgate/service/messenger"
)

// fakeSession records outbound calls and exposes registered handlers so a
// test can simulate interactions.
type fakeSession struct {
	sent        []*discordgo.MessageSend
	edited      []*discordgo.MessageEdit
	responded   []*discordgo.InteractionResponse
	interaction func(s *discordgo.Session, i *discordgo.InteractionCreate)
	channelErr  error
}

func (f *fakeSession) Open() error  { return nil }
func (f *fakeSession) Close() error { return nil }

func (f *fakeSession) UserChannelCreate(string, ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &discordgo.Channel{ID: "dm-1"}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: fmt.Sprintf("%d", len(f.sent))}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edited = append(f.edited, m)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responded = append(f.responded, resp)
	return nil
}

func (f *fakeSession) AddHandler(handler interface{}) func() {
	if h, ok := handler.(func(s *discordgo.Session, i *discordgo.InteractionCreate)); ok {
		f.interaction = h
	}
	return func() {}
}

func (f *fakeSession) press(customID string) {
	f.interaction(nil, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionMessageComponent,
			Data: discordgo.MessageComponentInteractionData{CustomID: customID},
		},
	})
}

func TestPublish_SendsDMWithButtons(t *testing.T) {
	fake := &fakeSession{}
	svc := newService(fake, "user-1")

	handle, err := svc.Publish(context.Background(), &messenger.Prompt{
		RequestID: "abc123de",
		Tool:      "Bash",
		Input:     json.RawMessage(`{"command":"ls"}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, "dm-1", handle.ChatID)
	assert.Equal(t, "1", handle.MessageID)

	if !assert.Len(t, fake.sent, 1) {
		return
	}
	assert.Contains(t, fake.sent[0].Content, "Permission Request")
	row, ok := fake.sent[0].Components[0].(discordgo.ActionsRow)
	if assert.True(t, ok) {
		assert.Equal(t, "abc123de:allow", row.Components[0].(discordgo.Button).CustomID)
		assert.Equal(t, "abc123de:deny", row.Components[1].(discordgo.Button).CustomID)
		assert.Equal(t, "abc123de:always_allow:Bash", row.Components[2].(discordgo.Button).CustomID)
	}
}

func TestPublish_ChannelCreateFailurePropagates(t *testing.T) {
	fake := &fakeSession{channelErr: fmt.Errorf("unknown user")}
	svc := newService(fake, "user-1")

	_, err := svc.Publish(context.Background(), &messenger.Prompt{Tool: "Bash"})
	assert.Error(t, err)
	assert.Empty(t, fake.sent)
}

func TestInteraction_DispatchesReply(t *testing.T) {
	fake := &fakeSession{}
	svc := newService(fake, "user-1")

	var received []messenger.Reply
	cancel := svc.OnReply(func(reply messenger.Reply) {
		received = append(received, reply)
	})

	fake.press("abc123de:always_allow:Bash")
	if assert.Len(t, received, 1) {
		assert.Equal(t, "abc123de", received[0].RequestID)
		assert.Equal(t, messenger.ActionAlwaysAllow, received[0].Action)
		assert.Equal(t, "Bash", received[0].Tool)
	}
	assert.Len(t, fake.responded, 1)

	cancel()
	fake.press("abc123de:deny")
	assert.Len(t, received, 1)
}

func TestInteraction_MalformedPayloadIgnored(t *testing.T) {
	fake := &fakeSession{}
	svc := newService(fake, "user-1")

	var received []messenger.Reply
	svc.OnReply(func(reply messenger.Reply) {
		received = append(received, reply)
	})

	fake.press("garbage")
	assert.Empty(t, received)
	assert.Empty(t, fake.responded)
}

func TestUpdateStatus_EditsMessageAndStripsButtons(t *testing.T) {
	fake := &fakeSession{}
	svc := newService(fake, "user-1")

	err := svc.UpdateStatus(context.Background(),
		&messenger.Handle{ChatID: "dm-1", MessageID: "7"},
		&messenger.Prompt{Tool: "Bash"},
		messenger.StatusTimedOut)
	assert.NoError(t, err)
	if assert.Len(t, fake.edited, 1) {
		assert.Equal(t, "7", fake.edited[0].ID)
		assert.Contains(t, *fake.edited[0].Content, "Timed out")
		assert.Empty(t, *fake.edited[0].Components)
	}
}
