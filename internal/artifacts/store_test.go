// internal/artifacts/store_test.go
package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"credit-risk-workers/internal/common/database"
	"credit-risk-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderArtifact(t *testing.T) {
	assert.Equal(t, "Saving accounts_encoder.json", EncoderArtifact(models.FeatureSavingAccounts))
	assert.Equal(t, "Sex_encoder.json", EncoderArtifact(models.FeatureSex))
}

// ==========================
// File store
// ==========================

func TestFileStore_Fetch(t *testing.T) {
	store := NewFileStore("testdata")
	ctx := context.Background()

	data, err := store.Fetch(ctx, "Sex_encoder.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"female"`)

	_, err = store.Fetch(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = store.Fetch(ctx, "../store.go")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrArtifactNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Fetch(cancelled, "Sex_encoder.json")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, "file:testdata", store.Describe())
}

// ==========================
// Postgres store
// ==========================

func TestPostgresStore_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewPostgresStore(database.NewPostgresFromDB(db), "model_artifacts")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM model_artifacts WHERE name = \$1`).
		WithArgs("Sex_encoder.json").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"feature":"Sex","classes":["female","male"]}`)))

	data, err := store.Fetch(context.Background(), "Sex_encoder.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"feature":"Sex","classes":["female","male"]}`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewPostgresStore(database.NewPostgresFromDB(db), "model_artifacts")
	require.NoError(t, err)

	payload := []byte(`{"feature":"Sex","classes":["female","male"]}`)
	mock.ExpectExec(`INSERT INTO model_artifacts \(name, payload, updated_at\)`).
		WithArgs("Sex_encoder.json", payload).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Put(context.Background(), "Sex_encoder.json", payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Fetch_Errors(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store, err := NewPostgresStore(database.NewPostgresFromDB(db), "ml.model_artifacts")
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT payload FROM ml.model_artifacts WHERE name = \$1`).
			WithArgs(ModelArtifact).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))

		_, err = store.Fetch(context.Background(), ModelArtifact)
		assert.ErrorIs(t, err, ErrArtifactNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store, err := NewPostgresStore(database.NewPostgresFromDB(db), "model_artifacts")
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT payload FROM model_artifacts`).
			WillReturnError(sql.ErrConnDone)

		_, err = store.Fetch(context.Background(), ModelArtifact)
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NotErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewPostgresStore(nil, "artifacts; DROP TABLE x")
		assert.Error(t, err)
	})
}

// ==========================
// Redis store
// ==========================

func TestRedisStore_Fetch(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, mr.Set("credit-risk:artifact:Housing_encoder.json", `{"feature":"Housing","classes":["free","own","rent"]}`))

	store := NewRedisStore(database.NewRedisFromClient(rdb), "credit-risk:artifact:")

	data, err := store.Fetch(context.Background(), "Housing_encoder.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rent"`)

	_, err = store.Fetch(context.Background(), "Sex_encoder.json")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestRedisStore_PutThenFetch(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisStore(database.NewRedisFromClient(rdb), "credit-risk:artifact:")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ModelArtifact, []byte(`{"estimator":"ExtraTreesClassifier"}`)))
	assert.True(t, mr.Exists("credit-risk:artifact:"+ModelArtifact))

	data, err := store.Fetch(ctx, ModelArtifact)
	require.NoError(t, err)
	assert.JSONEq(t, `{"estimator":"ExtraTreesClassifier"}`, string(data))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"Sex_encoder.json",
		"Housing_encoder.json",
		"Saving accounts_encoder.json",
		"Checking account_encoder.json",
		ModelArtifact,
	}, Names())
}

func TestRedisStore_Fetch_ConnectionError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("p:" + ModelArtifact).SetErr(errors.New("connection reset by peer"))

	store := NewRedisStore(database.NewRedisFromClient(rdb), "p:")
	_, err := store.Fetch(context.Background(), ModelArtifact)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrArtifactNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
