package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/internal/service/session"
	"github.com/otsyhq/otsy-backend/internal/store"
	"github.com/otsyhq/otsy-backend/internal/store/memory"
)

func newStore(t *testing.T) (*session.Store, store.Dual) {
	t.Helper()
	sinks := store.Dual{Remote: memory.New(), Local: memory.New()}
	personas := persona.NewMemoryStore(persona.Seed())
	return session.NewStore(sinks, personas, nil), sinks
}

func TestLoadSeedsGreetingOnce(t *testing.T) {
	svc, _ := newStore(t)
	ctx := context.Background()
	guest := identity.Anonymous("device-1")

	first, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, chat.SenderBot, first[0].Sender)

	second, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID, "re-load must not re-seed")
}

func TestGreetingVariesByIdentityKind(t *testing.T) {
	svc, _ := newStore(t)
	ctx := context.Background()

	guestMsgs, err := svc.Load(ctx, identity.Anonymous("device-1"), persona.GeneralID)
	require.NoError(t, err)
	userMsgs, err := svc.Load(ctx, identity.Authenticated("user-1"), persona.GeneralID)
	require.NoError(t, err)

	require.Contains(t, guestMsgs[0].Text, "Guest Mode")
	require.NotContains(t, userMsgs[0].Text, "Guest Mode")
}

func TestIdentitiesRouteToSeparateSinks(t *testing.T) {
	svc, sinks := newStore(t)
	ctx := context.Background()
	user := identity.Authenticated("user-1")
	guest := identity.Anonymous("device-1")

	_, err := svc.Load(ctx, user, persona.GeneralID)
	require.NoError(t, err)
	_, err = svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)

	remote, err := sinks.Remote.History(ctx, user.ID(), persona.GeneralID)
	require.NoError(t, err)
	require.Len(t, remote, 1)

	local, err := sinks.Local.History(ctx, user.ID(), persona.GeneralID)
	require.NoError(t, err)
	require.Empty(t, local, "authenticated session leaked into the local sink")
}

func TestAppendIsReadableAfterwards(t *testing.T) {
	svc, _ := newStore(t)
	ctx := context.Background()
	guest := identity.Anonymous("device-1")

	seeded, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)

	msg := chat.Message{
		ID:        uuid.NewString(),
		Text:      "hello there",
		Sender:    chat.SenderUser,
		PersonaID: persona.GeneralID,
		CreatedAt: seeded[0].CreatedAt.Add(time.Second),
	}
	require.NoError(t, svc.Append(ctx, guest, persona.GeneralID, msg))

	msgs, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "hello there", msgs[1].Text)
}

func TestClearLeavesSingleResetMessage(t *testing.T) {
	svc, _ := newStore(t)
	ctx := context.Background()
	guest := identity.Anonymous("device-1")

	_, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.NoError(t, svc.Append(ctx, guest, persona.GeneralID, chat.Message{
		ID: uuid.NewString(), Text: "one", Sender: chat.SenderUser,
		PersonaID: persona.GeneralID, CreatedAt: time.Now().UTC(),
	}))

	reset, err := svc.Clear(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.Equal(t, chat.SenderBot, reset.Sender)

	msgs, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, reset.ID, msgs[0].ID)

	// Clearing again keeps the single-message shape.
	_, err = svc.Clear(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	msgs, err = svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestSessionsArePerPersona(t *testing.T) {
	svc, _ := newStore(t)
	ctx := context.Background()
	guest := identity.Anonymous("device-1")

	otsy, err := svc.Load(ctx, guest, persona.GeneralID)
	require.NoError(t, err)
	haven, err := svc.Load(ctx, guest, "haven")
	require.NoError(t, err)

	require.NotEqual(t, otsy[0].Text, haven[0].Text)
}
