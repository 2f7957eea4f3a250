package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendel-inheritance-server/internal/domain"
)

func annotationColumns() []string {
	return []string{"symbol", "ensembl_id", "description", "biotype", "chromosome", "start_pos", "end_pos", "fetched_at"}
}

func TestGetReturnsFreshAnnotation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAnnotationStoreWithDB(db, 24*time.Hour)

	fetched := time.Now().UTC().Add(-time.Hour)
	mock.ExpectQuery("SELECT symbol, ensembl_id").
		WithArgs("PKD1").
		WillReturnRows(sqlmock.NewRows(annotationColumns()).
			AddRow("PKD1", "ENSG00000008710", "polycystin 1", "protein_coding", "16", int64(2088708), int64(2135898), fetched))

	ann, found, err := store.Get(context.Background(), "PKD1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "PKD1", ann.Symbol)
	assert.Equal(t, "ENSG00000008710", ann.EnsemblID)
	assert.Equal(t, domain.Chromosome("16"), ann.Chromosome)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExpiresStaleAnnotation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAnnotationStoreWithDB(db, time.Hour)

	stale := time.Now().UTC().Add(-48 * time.Hour)
	mock.ExpectQuery("SELECT symbol, ensembl_id").
		WithArgs("CFTR").
		WillReturnRows(sqlmock.NewRows(annotationColumns()).
			AddRow("CFTR", "ENSG00000001626", "", "protein_coding", "7", int64(0), int64(0), stale))

	_, found, err := store.Get(context.Background(), "CFTR")
	require.NoError(t, err)
	assert.False(t, found, "entries older than the TTL are reported absent")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingSymbol(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAnnotationStoreWithDB(db, 0)

	mock.ExpectQuery("SELECT symbol, ensembl_id").
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(annotationColumns()))

	ann, found, err := store.Get(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ann)
}

func TestPutUpsertsAnnotation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAnnotationStoreWithDB(db, 0)

	mock.ExpectExec("INSERT INTO gene_annotations").
		WithArgs("BRCA2", "ENSG00000139618", "", "protein_coding", "13", int64(0), int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Put(context.Background(), &domain.GeneAnnotation{
		Symbol:     "BRCA2",
		EnsemblID:  "ENSG00000139618",
		Biotype:    "protein_coding",
		Chromosome: "13",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneDeletesExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAnnotationStoreWithDB(db, time.Hour)

	mock.ExpectExec("DELETE FROM gene_annotations").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Without a TTL prune is a no-op and touches no expectations
	noTTL := NewAnnotationStoreWithDB(db, 0)
	n, err = noTTL.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
