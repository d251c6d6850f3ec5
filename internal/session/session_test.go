package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/studymate/internal/models"
)

func TestSession_AppendKeepsOrder(t *testing.T) {
	sess := New("student", time.UTC)

	sess.Append(models.RoleUser, "first")
	sess.Append(models.RoleAssistant, "second")
	sess.Append(models.RoleUser, "third")

	log := sess.Log()
	require.Len(t, log, 3)
	assert.Equal(t, "first", log[0].Text)
	assert.Equal(t, "second", log[1].Text)
	assert.Equal(t, "third", log[2].Text)
	assert.Equal(t, models.RoleAssistant, log[1].Role)

	for _, msg := range log {
		assert.NotEmpty(t, msg.ID)
	}
}

func TestSession_LogReturnsCopy(t *testing.T) {
	sess := New("student", time.UTC)
	sess.Append(models.RoleUser, "original")

	log := sess.Log()
	log[0].Text = "mutated"

	assert.Equal(t, "original", sess.Log()[0].Text)
}

func TestSession_Recent(t *testing.T) {
	sess := New("student", time.UTC)
	for _, text := range []string{"a", "b", "c", "d"} {
		sess.Append(models.RoleUser, text)
	}

	recent := sess.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Text)
	assert.Equal(t, "d", recent[1].Text)

	assert.Len(t, sess.Recent(10), 4, "asking for more than exists returns all")
	assert.Nil(t, sess.Recent(0))
}

func TestSession_Reset(t *testing.T) {
	sess := New("student", time.UTC)
	sess.Append(models.RoleUser, "hello")
	sess.Append(models.RoleAssistant, "hi")

	sess.Reset()

	assert.Empty(t, sess.Log())
	assert.Equal(t, 0, sess.Stats().TotalMessages)
}

func TestSession_Stats(t *testing.T) {
	sess := New("student", time.UTC)

	empty := sess.Stats()
	assert.Equal(t, 0, empty.TotalMessages)
	assert.Nil(t, empty.ConversationStarted)
	assert.Nil(t, empty.LastInteraction)

	clock := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	sess.SetClock(func() time.Time { return clock })
	sess.Append(models.RoleUser, "first")

	clock = clock.Add(5 * time.Minute)
	sess.Append(models.RoleAssistant, "second")

	stats := sess.Stats()
	assert.Equal(t, 2, stats.TotalMessages)
	require.NotNil(t, stats.ConversationStarted)
	require.NotNil(t, stats.LastInteraction)
	assert.True(t, stats.ConversationStarted.Before(*stats.LastInteraction))
}

func TestSession_NowUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sess := New("student", loc)
	sess.SetClock(func() time.Time {
		return time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)
	})

	now := sess.Now()
	assert.Equal(t, loc, now.Location())
	assert.Equal(t, 10, now.Hour(), "UTC 14:30 is 10:30 in New York during DST")
}

func TestStore_GetOrCreate(t *testing.T) {
	store := NewStore()

	first := store.GetOrCreate("", "student", time.UTC)
	require.NotNil(t, first)
	assert.NotEmpty(t, first.ID)

	same := store.GetOrCreate(first.ID, "student", time.UTC)
	assert.Same(t, first, same, "an existing ID resolves to the same session")

	fresh := store.GetOrCreate("", "student", time.UTC)
	assert.NotSame(t, first, fresh, "an empty ID always creates a new session")

	named := store.GetOrCreate("my-session", "student", time.UTC)
	assert.Equal(t, "my-session", named.ID)
	assert.Same(t, named, store.Get("my-session"))

	assert.Equal(t, 3, store.Len())
	assert.Nil(t, store.Get("unknown"))
}
