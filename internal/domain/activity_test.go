package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewActivity(t *testing.T) {
	consonant, err := NewConsonant("b", "Be")
	require.NoError(t, err)

	activity, err := NewActivity(ActivitySyllableGame, consonant, 3)
	require.NoError(t, err)
	assert.Equal(t, consonant.ID, activity.ConsonantID)
	assert.Equal(t, "B", activity.Metadata["consonantLetter"])
	assert.Equal(t, "Be", activity.Metadata["consonantName"])

	_, err = NewActivity("DANCE", consonant, 3)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewActivity(ActivitySyllableGame, consonant, 6)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "difficulty", verr.Fields[0].Field)

	_, err = NewActivity(ActivitySyllableGame, nil, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActivitySessionLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := NewActivitySession(SessionOwner("anon-1"), uuid.New(), now)

	assert.Equal(t, SessionPending, session.Status())
	assert.Equal(t, "session:anon-1", session.Owner().Key())

	err := session.ApplyProgress(ProgressUpdate{
		WordsCorrect: 3,
		WordsTotal:   5,
		Score:        intPtr(30),
		Metadata:     Metadata{"round": 1.0},
	}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, session.WordsCorrect)
	assert.Equal(t, 30, session.Score)
	assert.Equal(t, 0, session.TimeSpent)

	completedAt := now.Add(2 * time.Minute)
	err = session.Complete(CompletionResult{
		FinalScore:   50,
		TimeSpent:    120,
		WordsCorrect: 5,
		WordsTotal:   5,
		Metadata:     Metadata{"level": "easy", "round": 2.0},
	}, completedAt)
	require.NoError(t, err)

	assert.Equal(t, SessionCompleted, session.Status())
	require.NotNil(t, session.CompletedAt)
	assert.Equal(t, completedAt, *session.CompletedAt)
	assert.Equal(t, Metadata{
		"round":       2.0,
		"level":       "easy",
		"completedAt": "2026-03-01T10:02:00.000Z",
	}, session.Metadata)

	// Terminal state rejects further mutation and keeps the frozen stats
	err = session.Complete(CompletionResult{FinalScore: 1, WordsTotal: 1}, completedAt.Add(time.Minute))
	assert.ErrorIs(t, err, ErrSessionCompleted)
	err = session.ApplyProgress(ProgressUpdate{WordsCorrect: 1, WordsTotal: 1}, completedAt)
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.Equal(t, 50, session.Score)
	assert.Equal(t, 5, session.WordsTotal)
}

func TestActivitySessionAccessibleBy(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	anonymous := NewActivitySession(SessionOwner("anon"), uuid.New(), time.Now())
	owned := NewActivitySession(UserOwner(owner, "anon"), uuid.New(), time.Now())

	assert.True(t, anonymous.AccessibleBy(Anonymous{}))
	assert.True(t, anonymous.AccessibleBy(Authenticated{UserID: other, Role: RoleUser}))

	assert.True(t, owned.AccessibleBy(Authenticated{UserID: owner, Role: RoleUser}))
	assert.False(t, owned.AccessibleBy(Authenticated{UserID: other, Role: RoleAdmin}))
	assert.False(t, owned.AccessibleBy(Anonymous{}))
}

func TestMergeMetadataDoesNotMutateInputs(t *testing.T) {
	prior := Metadata{"a": 1}
	supplied := Metadata{"b": 2}

	merged := MergeMetadata(prior, supplied, time.Unix(0, 0))

	assert.Len(t, prior, 1)
	assert.Len(t, supplied, 1)
	assert.Equal(t, "1970-01-01T00:00:00.000Z", merged["completedAt"])
	assert.Len(t, merged, 3)
}
