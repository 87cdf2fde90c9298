package sqlstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/sqlstore"
	"github.com/phrazzld/silabas-api/internal/store"
	"github.com/phrazzld/silabas-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsonantStore(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	consonants := sqlstore.NewConsonantStore(db, nil)

	m, err := domain.NewConsonant("m", "Eme")
	require.NoError(t, err)
	require.NoError(t, consonants.Create(ctx, m))

	b, err := domain.NewConsonant("b", "Be")
	require.NoError(t, err)
	inserted, err := consonants.CreateIfAbsent(ctx, b)
	require.NoError(t, err)
	assert.True(t, inserted)

	again, err := domain.NewConsonant("B", "Be otra vez")
	require.NoError(t, err)
	inserted, err = consonants.CreateIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	err = consonants.Create(ctx, again)
	assert.ErrorIs(t, err, store.ErrLetterExists)

	list, err := consonants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Letter)
	assert.Equal(t, "Be", list[0].Name)
	assert.Equal(t, "M", list[1].Letter)

	byLetter, err := consonants.GetByLetter(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, m.ID, byLetter.ID)

	_, err = consonants.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrConsonantNotFound)
}

func TestWordStore(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	p := testdb.SeedConsonant(t, db, "p", "Pe")
	words := sqlstore.NewWordStore(db, nil)

	seed := []struct {
		text       string
		syllables  int
		difficulty int
		consonant  uuid.UUID
	}{
		{"ba", 1, 1, b.ID},
		{"boca", 2, 2, b.ID},
		{"bebe", 2, 2, b.ID},
		{"banana", 3, 3, b.ID},
		{"burbujas", 3, 4, b.ID},
		{"papa", 2, 2, p.ID},
	}
	for _, s := range seed {
		w, err := domain.NewWord(s.text, s.syllables, s.difficulty, s.consonant)
		require.NoError(t, err)
		require.NoError(t, words.Create(ctx, w))
	}

	dup, err := domain.NewWord("boca", 2, 2, b.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, words.Create(ctx, dup), store.ErrWordExists)

	orphan, err := domain.NewWord("zorro", 2, 2, uuid.New())
	require.NoError(t, err)
	assert.ErrorIs(t, words.Create(ctx, orphan), store.ErrInvalidEntity)

	tests := []struct {
		name   string
		filter store.WordFilter
		want   []string
	}{
		{"all for consonant", store.WordFilter{ConsonantID: b.ID}, []string{"ba", "banana", "bebe", "boca", "burbujas"}},
		{"syllables", store.WordFilter{ConsonantID: b.ID, Syllables: 2}, []string{"bebe", "boca"}},
		{"max difficulty", store.WordFilter{ConsonantID: b.ID, MaxDifficulty: 3}, []string{"ba", "banana", "bebe", "boca"}},
		{"combined", store.WordFilter{ConsonantID: b.ID, Syllables: 3, MaxDifficulty: 3}, []string{"banana"}},
		{"limit", store.WordFilter{ConsonantID: b.ID, Limit: 2}, []string{"ba", "banana"}},
		{"other consonant", store.WordFilter{ConsonantID: p.ID}, []string{"papa"}},
		{"no match", store.WordFilter{ConsonantID: b.ID, Syllables: 7}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := words.List(ctx, tc.filter)
			require.NoError(t, err)
			texts := make([]string, 0, len(got))
			for _, w := range got {
				texts = append(texts, w.Text)
			}
			assert.Equal(t, tc.want, texts)
		})
	}
}

func TestProgressStoreUpsertIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	progress := sqlstore.NewProgressStore(db, nil)
	owner := domain.SessionOwner("anon-1")

	first, err := domain.NewUserProgress(owner, b.ID, 3, 5)
	require.NoError(t, err)
	saved, err := progress.Upsert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, saved.ID)

	second, err := domain.NewUserProgress(owner, b.ID, 1, 5)
	require.NoError(t, err)
	second.UpdatedAt = second.UpdatedAt.Add(time.Second)
	saved, err = progress.Upsert(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, first.ID, saved.ID, "the existing row is updated in place")
	assert.Equal(t, 1, saved.WordsCompleted)
	assert.Equal(t, 5, saved.TotalWords)
	assert.Nil(t, saved.UserID)
	assert.Equal(t, "anon-1", saved.SessionID)

	_, err = progress.Get(ctx, domain.SessionOwner("someone-else"), b.ID)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)
}

func TestProgressStoreConcurrentUpsertsKeepOneRow(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	progress := sqlstore.NewProgressStore(db, nil)
	owner := domain.SessionOwner("racer")

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p, err := domain.NewUserProgress(owner, b.ID, n, 8)
			assert.NoError(t, err)
			_, err = progress.Upsert(ctx, p)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := progress.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 8, records[0].TotalWords)
}

func TestProgressStoreReassignAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	m := testdb.SeedConsonant(t, db, "m", "Eme")
	user := testdb.SeedUser(t, db, "ana@example.com", domain.RoleUser)
	progress := sqlstore.NewProgressStore(db, nil)

	anon := domain.SessionOwner("anon-2")
	older, err := domain.NewUserProgress(anon, b.ID, 1, 4)
	require.NoError(t, err)
	older.UpdatedAt = older.UpdatedAt.Add(-time.Hour)
	_, err = progress.Upsert(ctx, older)
	require.NoError(t, err)
	newer, err := domain.NewUserProgress(anon, m.ID, 2, 4)
	require.NoError(t, err)
	_, err = progress.Upsert(ctx, newer)
	require.NoError(t, err)

	list, err := progress.ListByOwner(ctx, anon)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, m.ID, list[0].ConsonantID, "most recently updated first")

	account := domain.UserOwner(user.ID, "anon-2")
	require.NoError(t, progress.Reassign(ctx, older.ID, account))
	moved, err := progress.Get(ctx, account, b.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.UserID)
	assert.Equal(t, user.ID, *moved.UserID)

	require.NoError(t, progress.Delete(ctx, newer.ID))
	assert.ErrorIs(t, progress.Delete(ctx, newer.ID), store.ErrProgressNotFound)
	assert.ErrorIs(t, progress.Reassign(ctx, newer.ID, account), store.ErrProgressNotFound)

	left, err := progress.ListByOwner(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestActivityStoreDeduplicates(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	activities := sqlstore.NewActivityStore(db, nil)

	first, err := domain.NewActivity(domain.ActivitySyllableGame, b, 2)
	require.NoError(t, err)
	stored, err := activities.GetOrCreate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "B", stored.Metadata["consonantLetter"])
	require.NotNil(t, stored.Consonant)
	assert.Equal(t, "Be", stored.Consonant.Name)

	second, err := domain.NewActivity(domain.ActivitySyllableGame, b, 2)
	require.NoError(t, err)
	reused, err := activities.GetOrCreate(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reused.ID)

	other, err := domain.NewActivity(domain.ActivitySyllableGame, b, 3)
	require.NoError(t, err)
	distinct, err := activities.GetOrCreate(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, distinct.ID)

	got, err := activities.GetByID(ctx, distinct.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Difficulty)

	_, err = activities.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrActivityNotFound)
}

func TestActivitySessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	activity, err := domain.NewActivity(domain.ActivityConsonantPractice, b, 1)
	require.NoError(t, err)
	activity, err = sqlstore.NewActivityStore(db, nil).GetOrCreate(ctx, activity)
	require.NoError(t, err)

	sessions := sqlstore.NewActivitySessionStore(db, nil)
	owner := domain.SessionOwner("anon-3")
	now := time.Now().UTC()

	pending, err := sessions.CreatePending(ctx, domain.NewActivitySession(owner, activity.ID, now))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPending, pending.Status())
	require.NotNil(t, pending.Activity)
	assert.Equal(t, "B", pending.Activity.Consonant.Letter)

	reused, err := sessions.CreatePending(ctx, domain.NewActivitySession(owner, activity.ID, now))
	require.NoError(t, err)
	assert.Equal(t, pending.ID, reused.ID, "one pending session per owner and activity")

	require.NoError(t, pending.ApplyProgress(domain.ProgressUpdate{
		WordsCorrect: 2,
		WordsTotal:   5,
		Metadata:     domain.Metadata{"round": 1.0},
	}, now.Add(time.Second)))
	require.NoError(t, sessions.UpdateProgress(ctx, pending))

	loaded, err := sessions.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.WordsCorrect)
	assert.Equal(t, domain.Metadata{"round": 1.0}, loaded.Metadata)

	require.NoError(t, loaded.Complete(domain.CompletionResult{
		FinalScore: 90, TimeSpent: 60, WordsCorrect: 5, WordsTotal: 5,
	}, now.Add(time.Minute)))
	require.NoError(t, sessions.Complete(ctx, loaded))

	// A stale copy of the pending session cannot complete it again
	stale := *pending
	require.NoError(t, stale.Complete(domain.CompletionResult{FinalScore: 1, WordsTotal: 1}, now.Add(2*time.Minute)))
	assert.ErrorIs(t, sessions.Complete(ctx, &stale), store.ErrSessionCompleted)
	assert.ErrorIs(t, sessions.UpdateProgress(ctx, pending), store.ErrSessionCompleted)

	final, err := sessions.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, final.Score)
	require.NotNil(t, final.CompletedAt)
	assert.Contains(t, final.Metadata, "completedAt")

	count, err := sessions.CountCompleted(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Completion frees the slot for a new pending session
	next, err := sessions.CreatePending(ctx, domain.NewActivitySession(owner, activity.ID, now.Add(time.Hour)))
	require.NoError(t, err)
	assert.NotEqual(t, pending.ID, next.ID)

	completed, err := sessions.ListCompleted(ctx, owner)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	active, err := sessions.ListPending(ctx, owner)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, next.ID, active[0].ID)

	missing := domain.NewActivitySession(owner, activity.ID, now)
	assert.ErrorIs(t, sessions.UpdateProgress(ctx, missing), store.ErrSessionNotFound)
	_, err = sessions.GetByID(ctx, missing.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestActivitySessionStoreConcurrentStart(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	activity, err := domain.NewActivity(domain.ActivityWordRecognition, b, 1)
	require.NoError(t, err)
	activity, err = sqlstore.NewActivityStore(db, nil).GetOrCreate(ctx, activity)
	require.NoError(t, err)

	sessions := sqlstore.NewActivitySessionStore(db, nil)
	owner := domain.SessionOwner("double-click")

	ids := make(chan uuid.UUID, 6)
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := sessions.CreatePending(ctx, domain.NewActivitySession(owner, activity.ID, time.Now()))
			if assert.NoError(t, err) {
				ids <- s.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	unique := map[uuid.UUID]bool{}
	for id := range ids {
		unique[id] = true
	}
	assert.Len(t, unique, 1)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	users := sqlstore.NewUserStore(db, nil)

	u, err := domain.NewUser("Maestra@Example.com", "Lucía", "password123")
	require.NoError(t, err)

	assert.ErrorIs(t, users.Create(ctx, u), domain.ErrValidation, "plaintext only is rejected")

	u.HashedPassword = "$2a$10$hash"
	require.NoError(t, users.Create(ctx, u))

	dup, err := domain.NewUser("maestra@example.com", "Otra", "password123")
	require.NoError(t, err)
	dup.HashedPassword = "$2a$10$hash"
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)

	byEmail, err := users.GetByEmail(ctx, " MAESTRA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "Lucía", byEmail.Name)
	assert.Equal(t, domain.RoleUser, byEmail.Role)
	assert.Empty(t, byEmail.Password)

	byEmail.Role = domain.RoleTeacher
	require.NoError(t, users.Update(ctx, byEmail))
	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeacher, byID.Role)

	require.NoError(t, users.Delete(ctx, u.ID))
	assert.ErrorIs(t, users.Delete(ctx, u.ID), store.ErrUserNotFound)
	_, err = users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestRunInTransactionAcrossStores(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	b := testdb.SeedConsonant(t, db, "b", "Be")
	progress := sqlstore.NewProgressStore(db, nil)
	owner := domain.SessionOwner("tx")

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx store.DBTX) error {
		p, err := domain.NewUserProgress(owner, b.ID, 1, 2)
		require.NoError(t, err)
		if _, err := progress.WithTx(tx).Upsert(ctx, p); err != nil {
			return err
		}
		return store.ErrUpdateFailed
	})
	assert.ErrorIs(t, err, store.ErrUpdateFailed)

	_, err = progress.Get(ctx, owner, b.ID)
	assert.ErrorIs(t, err, store.ErrProgressNotFound, "rolled back")
}

func TestMigratorStatusAndDown(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)

	migrator, err := sqlstore.NewMigrator(db, nil)
	require.NoError(t, err)

	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	assert.True(t, statuses[0].Applied)

	require.NoError(t, migrator.Up(ctx), "up is idempotent")

	require.NoError(t, migrator.Down(ctx))
	version, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	require.NoError(t, migrator.Up(ctx))
}

func TestPostgresStores(t *testing.T) {
	db := testdb.OpenPostgres(t)

	testdb.WithTx(t, db, func(t *testing.T, tx store.DBTX) {
		ctx := context.Background()
		c, err := domain.NewConsonant("b", "Be")
		require.NoError(t, err)
		consonants := sqlstore.NewConsonantStore(db, nil).WithTx(tx)
		if _, err := consonants.CreateIfAbsent(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
		c, err = consonants.GetByLetter(ctx, "B")
		require.NoError(t, err)

		progress := sqlstore.NewProgressStore(db, nil).WithTx(tx)
		owner := domain.SessionOwner("pg-" + uuid.NewString())
		p, err := domain.NewUserProgress(owner, c.ID, 2, 4)
		require.NoError(t, err)
		saved, err := progress.Upsert(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, 50, saved.CompletionPercentage())

		activity, err := domain.NewActivity(domain.ActivitySyllableGame, c, 1)
		require.NoError(t, err)
		activity, err = sqlstore.NewActivityStore(db, nil).WithTx(tx).GetOrCreate(ctx, activity)
		require.NoError(t, err)

		sessions := sqlstore.NewActivitySessionStore(db, nil).WithTx(tx)
		pending, err := sessions.CreatePending(ctx, domain.NewActivitySession(owner, activity.ID, time.Now()))
		require.NoError(t, err)
		require.NoError(t, pending.Complete(domain.CompletionResult{FinalScore: 10, WordsTotal: 1}, time.Now()))
		require.NoError(t, sessions.Complete(ctx, pending))
		assert.ErrorIs(t, sessions.Complete(ctx, pending), store.ErrSessionCompleted)
	})
}
